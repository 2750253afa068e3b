package folio_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tamarel/folio"
	"github.com/tamarel/folio/pkg/core"
)

// Example_basic demonstrates opening a profile, adding an article and
// reading the library back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "folio-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := folio.New(tmpDir)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	ctx := context.Background()

	// 1. Add an article
	doc, err := svc.AddArticle(ctx, core.Article{
		Title: "Attention Is All You Need",
		Tags:  []string{"transformers"},
	})
	if err != nil {
		log.Fatal(err)
	}

	// 2. Rate it
	if _, err := svc.RateArticle(ctx, doc.Articles[0].ID, 10); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Library holds %d article(s)\n", len(svc.Load(ctx).Articles))
	// Output:
	// Library holds 1 article(s)
}

// Example_sync demonstrates the encrypted sync round trip against a
// folder-backed remote.
func Example_sync() {
	profile, err := os.MkdirTemp("", "folio-sync-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(profile)
	remote, err := os.MkdirTemp("", "folio-remote-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(remote)

	svc, err := folio.New(profile)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	sy, err := folio.NewSyncer(profile, folio.WithRemoteDir(remote))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := sy.EnsureKey(ctx); err != nil {
		log.Fatal(err)
	}

	doc, err := svc.AddArticle(ctx, core.Article{Title: "Synced Paper"})
	if err != nil {
		log.Fatal(err)
	}

	ok := sy.Upload(ctx, doc)
	fmt.Printf("Pushed: %v\n", ok)

	pulled := sy.Pull(ctx)
	fmt.Printf("Pulled %d article(s)\n", len(pulled.Articles))
	// Output:
	// Pushed: true
	// Pulled 1 article(s)
}
