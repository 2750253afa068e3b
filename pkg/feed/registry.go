// Package feed manages monitored source URLs and ingests their items into
// the library as untriaged articles.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tamarel/folio/pkg/core"
)

// ErrDuplicateURL is returned when adding a feed whose URL is already
// registered. Uniqueness-by-URL is a soft product rule, enforced here at
// the edge rather than in storage.
var ErrDuplicateURL = errors.New("feed url already registered")

// ErrFeedNotFound is returned when a feed id does not exist.
var ErrFeedNotFound = errors.New("feed not found")

// Registry provides CRUD over the persisted feed list.
type Registry struct {
	storage core.Storage
}

// NewRegistry creates a Registry over the given storage.
func NewRegistry(storage core.Storage) *Registry {
	return &Registry{storage: storage}
}

// List returns all registered feeds.
func (r *Registry) List(ctx context.Context) ([]core.Feed, error) {
	return r.storage.LoadFeeds(ctx)
}

// Add registers a new feed, active by default.
func (r *Registry) Add(ctx context.Context, name, url string) (core.Feed, error) {
	feeds, err := r.storage.LoadFeeds(ctx)
	if err != nil {
		return core.Feed{}, err
	}
	for _, f := range feeds {
		if strings.EqualFold(strings.TrimSpace(f.URL), strings.TrimSpace(url)) {
			return core.Feed{}, fmt.Errorf("%w: %s", ErrDuplicateURL, url)
		}
	}
	feed := core.Feed{ID: uuid.NewString(), Name: name, URL: url, Active: true}
	feeds = append(feeds, feed)
	if err := r.storage.SaveFeeds(ctx, feeds); err != nil {
		return core.Feed{}, fmt.Errorf("failed to save feeds: %w", err)
	}
	return feed, nil
}

// Update changes a feed's display name and URL. The new URL must not
// collide with another registered feed.
func (r *Registry) Update(ctx context.Context, id, name, url string) (core.Feed, error) {
	feeds, err := r.storage.LoadFeeds(ctx)
	if err != nil {
		return core.Feed{}, err
	}
	for _, f := range feeds {
		if f.ID != id && strings.EqualFold(strings.TrimSpace(f.URL), strings.TrimSpace(url)) {
			return core.Feed{}, fmt.Errorf("%w: %s", ErrDuplicateURL, url)
		}
	}
	for i := range feeds {
		if feeds[i].ID == id {
			feeds[i].Name = name
			feeds[i].URL = url
			if err := r.storage.SaveFeeds(ctx, feeds); err != nil {
				return core.Feed{}, fmt.Errorf("failed to save feeds: %w", err)
			}
			return feeds[i], nil
		}
	}
	return core.Feed{}, ErrFeedNotFound
}

// Remove deletes a feed by id.
func (r *Registry) Remove(ctx context.Context, id string) error {
	feeds, err := r.storage.LoadFeeds(ctx)
	if err != nil {
		return err
	}
	kept := feeds[:0]
	found := false
	for _, f := range feeds {
		if f.ID == id {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return ErrFeedNotFound
	}
	return r.storage.SaveFeeds(ctx, kept)
}

// SetActive toggles a feed's active flag.
func (r *Registry) SetActive(ctx context.Context, id string, active bool) error {
	feeds, err := r.storage.LoadFeeds(ctx)
	if err != nil {
		return err
	}
	for i := range feeds {
		if feeds[i].ID == id {
			feeds[i].Active = active
			return r.storage.SaveFeeds(ctx, feeds)
		}
	}
	return ErrFeedNotFound
}
