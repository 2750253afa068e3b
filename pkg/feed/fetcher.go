package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/mmcdole/gofeed"

	"github.com/tamarel/folio/pkg/core"
)

// Parser abstracts gofeed for testing. *gofeed.Parser satisfies it.
type Parser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// Summary reports one ingestion run.
type Summary struct {
	FeedsChecked int
	NewArticles  int
	Failures     int
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithParser overrides the feed parser. Used by tests.
func WithParser(p Parser) FetcherOption {
	return func(f *Fetcher) { f.parser = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// WithMaxAttempts bounds fetch retries per feed (default 3).
func WithMaxAttempts(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// Fetcher pulls active feeds and ingests unseen items as untriaged
// articles. Transient fetch failures are retried with exponential backoff
// before a feed is skipped for the run.
type Fetcher struct {
	svc         *core.Service
	reg         *Registry
	parser      Parser
	logger      *slog.Logger
	maxAttempts int
}

// NewFetcher creates a Fetcher over the given service and registry.
func NewFetcher(svc *core.Service, reg *Registry, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		svc:         svc,
		reg:         reg,
		parser:      gofeed.NewParser(),
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run checks every active feed once. Per-feed failures are counted and
// logged, not fatal; the run itself only fails on storage errors.
func (f *Fetcher) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	feeds, err := f.reg.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to list feeds: %w", err)
	}

	for _, src := range feeds {
		if !src.Active {
			continue
		}
		sum.FeedsChecked++

		parsed, err := f.fetch(ctx, src.URL)
		if err != nil {
			sum.Failures++
			if f.logger != nil {
				f.logger.Warn("feed fetch failed", "feed", src.Name, "url", src.URL, "error", err)
			}
			_, _ = f.svc.AddLog(ctx, core.SeverityWarn, "feed fetch failed: "+src.Name,
				map[string]any{"url": src.URL, "error": err.Error()})
			continue
		}

		added, err := f.ingest(ctx, src, parsed)
		if err != nil {
			return sum, err
		}
		sum.NewArticles += added
	}

	if sum.FeedsChecked > 0 {
		_, _ = f.svc.AddLog(ctx, core.SeverityInfo, "feed run completed",
			map[string]any{"feeds": sum.FeedsChecked, "new": sum.NewArticles, "failed": sum.Failures})
	}
	return sum, nil
}

// fetch retrieves one feed with bounded exponential-backoff retries.
func (f *Fetcher) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(bo.NextBackOff()):
			}
		}
		parsed, err := f.parser.ParseURLWithContext(url, ctx)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", f.maxAttempts, lastErr)
}

// ingest adds unseen items as untriaged articles. Items whose title
// already resolves against the library are skipped (fuzzy dedupe, same
// resolver used for soft citations).
func (f *Fetcher) ingest(ctx context.Context, src core.Feed, parsed *gofeed.Feed) (int, error) {
	doc := f.svc.Load(ctx)

	added := 0
	for _, item := range parsed.Items {
		if item == nil || item.Title == "" {
			continue
		}
		if _, found := core.ResolveReference(doc.Articles, item.Title); found {
			continue
		}

		article := core.Article{
			Title:    item.Title,
			Abstract: item.Description,
			Source:   core.SourceFeed,
			Tags:     item.Categories,
		}
		for _, author := range item.Authors {
			if author != nil && author.Name != "" {
				article.Authors = append(article.Authors, author.Name)
			}
		}
		if item.PublishedParsed != nil {
			article.Published = item.PublishedParsed.Format(time.RFC3339)
			article.Year = item.PublishedParsed.Year()
		}
		if item.Link != "" {
			article.GroundingSources = []string{item.Link}
		}

		newDoc, err := f.svc.AddArticle(ctx, article)
		if err != nil {
			return added, fmt.Errorf("failed to ingest %q: %w", item.Title, err)
		}
		doc = newDoc
		added++
	}

	if f.logger != nil && added > 0 {
		f.logger.Info("feed items ingested", "feed", src.Name, "count", added)
	}
	return added, nil
}
