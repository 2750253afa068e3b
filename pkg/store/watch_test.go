package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/tamarel/folio/pkg/core"
)

func TestStore_Watch(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "document")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// Give the watcher a moment to arm before writing.
	time.Sleep(100 * time.Millisecond)

	if err := s.SaveDocument(ctx, core.DefaultDocument()); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	select {
	case e := <-events:
		if e.Topic != "document" {
			t.Errorf("topic = %s", e.Topic)
		}
		if e.Type != core.EventModify {
			t.Errorf("type = %s", e.Type)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event after document save")
	}

	// The sync key file never produces events.
	if err := s.SaveSyncKey(ctx, "secret"); err != nil {
		t.Fatalf("SaveSyncKey failed: %v", err)
	}
	select {
	case e, ok := <-events:
		if ok {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStore_Watch_FilteredTopic(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "interests")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	// A document write does not match the interests pattern.
	if err := s.SaveDocument(ctx, core.DefaultDocument()); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if err := s.SaveInterests(ctx, []string{"vision"}); err != nil {
		t.Fatalf("SaveInterests failed: %v", err)
	}

	select {
	case e := <-events:
		if e.Topic != "interests" {
			t.Errorf("expected interests event first, got %s", e.Topic)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event after interests save")
	}
}

func TestStore_Watch_InvalidPattern(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Watch(context.Background(), "["); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestStore_Watch_StopsOnCancel(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := s.Watch(ctx, "**")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			// Drain one in-flight event; the channel must close shortly.
			select {
			case _, ok = <-events:
				if ok {
					t.Error("channel still open after cancel")
				}
			case <-time.After(2 * time.Second):
				t.Fatal("channel not closed after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
