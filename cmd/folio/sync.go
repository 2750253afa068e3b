package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamarel/folio"
)

var remoteDir string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the library with the remote folder",
	Long: `Push or pull the encrypted library document. The remote is a
folder-scoped object store; content is AES-GCM encrypted with a key derived
from the locally held sync secret.`,
}

// openSyncer builds the syncer for the resolved profile and remote.
func openSyncer() *folio.Syncer {
	if remoteDir == "" {
		fmt.Fprintln(os.Stderr, "Error: --remote is required")
		os.Exit(1)
	}
	sy, err := folio.NewSyncer(profileDir(),
		folio.WithRemoteDir(remoteDir),
		folio.WithLogger(slog.Default()),
		folio.WithDevSafety(false),
	)
	if err != nil {
		fatal("Failed to configure sync", err)
	}
	return sy
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Encrypt and upload the library document",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService()
		defer svc.Close()
		sy := openSyncer()

		if _, err := sy.EnsureKey(ctx); err != nil {
			fatal("Failed to prepare sync key", err)
		}

		doc := svc.Load(ctx)
		if !sy.Upload(ctx, doc) {
			fmt.Fprintln(os.Stderr, "Error: Sync push failed")
			fmt.Println("Tip: Run with --verbose for details. Check the remote folder is reachable.")
			os.Exit(1)
		}
		fmt.Println("Library pushed.")
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download and decrypt the remote library document",
	Long: `Replace the local library with the remote document. This is a
full-document replace: local changes not yet pushed are lost.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService()
		defer svc.Close()
		sy := openSyncer()

		doc := sy.Pull(ctx)
		if doc == nil {
			fmt.Fprintln(os.Stderr, "Error: No remote document, or it could not be decrypted")
			os.Exit(1)
		}
		if err := svc.Save(ctx, doc); err != nil {
			fatal("Failed to store pulled document", err)
		}
		fmt.Println("Library pulled.")
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync connection status",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sy := openSyncer()
		fmt.Println(sy.Status())
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.PersistentFlags().StringVar(&remoteDir, "remote", "", "Remote folder path")
}
