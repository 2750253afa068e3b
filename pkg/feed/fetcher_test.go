package feed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tamarel/folio/pkg/core"
	"github.com/tamarel/folio/pkg/feed"
	"github.com/tamarel/folio/pkg/store"
)

// stubParser implements feed.Parser with canned responses per URL.
type stubParser struct {
	feeds    map[string]*gofeed.Feed
	failures map[string]int // remaining failures before success
	calls    int
}

func (p *stubParser) ParseURLWithContext(url string, ctx context.Context) (*gofeed.Feed, error) {
	p.calls++
	if left, ok := p.failures[url]; ok && left > 0 {
		p.failures[url] = left - 1
		return nil, errors.New("connection refused")
	}
	f, ok := p.feeds[url]
	if !ok {
		return nil, errors.New("unknown feed")
	}
	return f, nil
}

func newFetcherEnv(t *testing.T) (*core.Service, *feed.Registry) {
	t.Helper()
	st := store.New(store.Config{Dir: t.TempDir()})
	if err := st.Initialize(context.TODO()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	svc := core.NewService(st)
	t.Cleanup(func() { svc.Close() })
	return svc, feed.NewRegistry(st)
}

func publishedAt(s string) *time.Time {
	ts, _ := time.Parse(time.RFC3339, s)
	return &ts
}

func TestFetcher_Run(t *testing.T) {
	svc, reg := newFetcherEnv(t)
	ctx := context.TODO()

	if _, err := reg.Add(ctx, "ml", "https://example.org/ml.rss"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	parser := &stubParser{feeds: map[string]*gofeed.Feed{
		"https://example.org/ml.rss": {Items: []*gofeed.Item{
			{
				Title:           "Scaling Laws for Neural Language Models",
				Description:     "We study empirical scaling laws.",
				Link:            "https://example.org/scaling",
				Categories:      []string{"cs.LG"},
				Authors:         []*gofeed.Person{{Name: "Kaplan"}},
				PublishedParsed: publishedAt("2020-01-23T00:00:00Z"),
			},
			{Title: ""}, // untitled items are skipped
		}},
	}}

	fetcher := feed.NewFetcher(svc, reg, feed.WithParser(parser))
	sum, err := fetcher.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.FeedsChecked != 1 || sum.NewArticles != 1 || sum.Failures != 0 {
		t.Errorf("summary = %+v", sum)
	}

	doc := svc.Load(ctx)
	a := doc.Articles[0]
	if a.Source != core.SourceFeed {
		t.Errorf("source = %s", a.Source)
	}
	if a.Rating != core.RatingUntriaged {
		t.Errorf("rating = %d", a.Rating)
	}
	if a.Year != 2020 {
		t.Errorf("year = %d", a.Year)
	}
	if len(a.GroundingSources) != 1 || a.GroundingSources[0] != "https://example.org/scaling" {
		t.Errorf("grounding sources = %v", a.GroundingSources)
	}

	// A second run sees the same items and ingests nothing.
	sum, err = fetcher.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if sum.NewArticles != 0 {
		t.Errorf("duplicate items ingested: %+v", sum)
	}
}

func TestFetcher_SkipsInactiveFeeds(t *testing.T) {
	svc, reg := newFetcherEnv(t)
	ctx := context.TODO()

	f, _ := reg.Add(ctx, "paused", "https://example.org/paused.rss")
	if err := reg.SetActive(ctx, f.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	parser := &stubParser{feeds: map[string]*gofeed.Feed{}}
	sum, err := feed.NewFetcher(svc, reg, feed.WithParser(parser)).Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.FeedsChecked != 0 || parser.calls != 0 {
		t.Errorf("inactive feed was fetched: %+v, calls=%d", sum, parser.calls)
	}
}

func TestFetcher_RetriesThenSucceeds(t *testing.T) {
	svc, reg := newFetcherEnv(t)
	ctx := context.TODO()

	url := "https://example.org/flaky.rss"
	if _, err := reg.Add(ctx, "flaky", url); err != nil {
		t.Fatal(err)
	}

	parser := &stubParser{
		feeds:    map[string]*gofeed.Feed{url: {Items: []*gofeed.Item{{Title: "Recovered Item"}}}},
		failures: map[string]int{url: 2},
	}

	fetcher := feed.NewFetcher(svc, reg, feed.WithParser(parser), feed.WithMaxAttempts(3))
	sum, err := fetcher.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.Failures != 0 || sum.NewArticles != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if parser.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", parser.calls)
	}
}

func TestFetcher_FailedFeedIsLoggedNotFatal(t *testing.T) {
	svc, reg := newFetcherEnv(t)
	ctx := context.TODO()

	if _, err := reg.Add(ctx, "dead", "https://example.org/dead.rss"); err != nil {
		t.Fatal(err)
	}
	okURL := "https://example.org/ok.rss"
	if _, err := reg.Add(ctx, "ok", okURL); err != nil {
		t.Fatal(err)
	}

	parser := &stubParser{feeds: map[string]*gofeed.Feed{
		okURL: {Items: []*gofeed.Item{{Title: "Still Works"}}},
	}}

	fetcher := feed.NewFetcher(svc, reg, feed.WithParser(parser), feed.WithMaxAttempts(1))
	sum, err := fetcher.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.Failures != 1 || sum.NewArticles != 1 {
		t.Errorf("summary = %+v", sum)
	}

	// The failure lands in the diagnostic log buffer.
	doc := svc.Load(ctx)
	found := false
	for _, entry := range doc.Logs {
		if entry.Severity == core.SeverityWarn {
			found = true
			break
		}
	}
	if !found {
		t.Error("no warn entry recorded for the failed feed")
	}
}
