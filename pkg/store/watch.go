package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/tamarel/folio/pkg/core"
)

// topicFor maps a state file to its event topic. Unknown files (including
// the sync key and temp files) produce no event.
func topicFor(name string) string {
	switch name {
	case DocumentFile:
		return "document"
	case InterestsFile:
		return "interests"
	case FeedsFile:
		return "feeds"
	case AIConfigFile:
		return "config"
	default:
		return ""
	}
}

// Watch emits events for out-of-process changes to the profile's state
// files, filtered by a doublestar pattern, until ctx is cancelled. The
// returned channel is closed when the watcher stops.
//
// Atomic writes land as rename events; both writes and renames map to
// MODIFY for files that already existed conceptually (the store cannot
// distinguish, so creations of state files also surface as CREATE once).
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if _, err := doublestar.Match(pattern, "probe"); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Dir, err)
	}

	events := make(chan core.Event, 16)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer s.setWatcherActive(false)
		defer watcher.Close()
		defer close(events)

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				s.forward(ctx, ev, pattern, events)
			case werr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if s.config.Logger != nil {
					s.config.Logger.Error("fsnotify error", "error", werr)
				}
				if s.config.ErrorHandler != nil {
					s.config.ErrorHandler(werr)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if s.config.ErrorHandler != nil {
			s.config.ErrorHandler(fmt.Errorf("watcher panic: %w", err))
		} else if s.config.Logger != nil {
			s.config.Logger.Error("watcher panic", "error", err)
		}
	}))

	return events, nil
}

func (s *Store) forward(ctx context.Context, ev fsnotify.Event, pattern string, out chan<- core.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return
	}
	topic := topicFor(name)
	if topic == "" {
		return
	}

	var eType core.EventType
	switch {
	case ev.Has(fsnotify.Create):
		// Renames from atomic writes surface as Create of the target.
		eType = core.EventModify
	case ev.Has(fsnotify.Write):
		eType = core.EventModify
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		eType = core.EventDelete
	default:
		return
	}

	if ok, err := doublestar.Match(pattern, topic); err != nil || !ok {
		return
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("state file changed", "file", name, "topic", topic)
	}

	select {
	case out <- core.Event{Type: eType, Topic: topic, Timestamp: time.Now().Unix()}:
	case <-ctx.Done():
	}
}

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
