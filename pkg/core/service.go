package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultEventBuffer is the per-subscriber channel capacity.
const DefaultEventBuffer = 100

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithEventBuffer sets the per-subscriber event channel capacity.
// Zero means DefaultEventBuffer.
func WithEventBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.eventBuffer = size
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service owns all business logic over the Document. Every mutator runs
// load -> mutate -> save under one mutex, so mutations are strictly
// sequential and never interleave mid-write. Load returns snapshots; a
// returned Document can be mutated freely without affecting persisted state.
//
// Service replaces the ambient module-level store of the original design:
// it has an explicit lifecycle (construct, Close) and an explicit
// subscription interface instead of a global change broadcast.
type Service struct {
	storage Storage
	logger  *slog.Logger
	now     func() time.Time

	eventBuffer int

	mu     sync.Mutex
	closed bool

	subMu   sync.Mutex
	subs    map[int]*subscription
	nextSub int

	watchCancel context.CancelFunc
}

type subscription struct {
	pattern string
	ch      chan Event
}

// NewService creates a Service over the given storage.
func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage:     storage,
		now:         time.Now,
		eventBuffer: DefaultEventBuffer,
		subs:        make(map[int]*subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current Document snapshot.
//
// If no Document exists (or the stored one is unreadable) a freshly
// initialized Document is returned. If the stored schema version differs
// from SchemaVersion, the load path migrates forward: it records one log
// entry describing the transition, overwrites the version, clears the prior
// log buffer and persists the result. Missing collections are backfilled.
// Load never fails past this boundary.
func (s *Service) Load(ctx context.Context) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx).Clone()
}

// load is the unsynchronized load path shared by Load and the mutators.
// Callers hold s.mu.
func (s *Service) load(ctx context.Context) *Document {
	doc, err := s.storage.LoadDocument(ctx)
	if err != nil || doc == nil {
		if err != nil && s.logger != nil {
			s.logger.Warn("document load failed, starting fresh", "error", err)
		}
		return DefaultDocument()
	}

	repaired := doc.Repair()

	if doc.SchemaVersion != SchemaVersion {
		s.migrate(ctx, doc)
		return doc
	}

	if repaired {
		// Persist the backfill so the repair does not repeat on every load.
		if err := s.storage.SaveDocument(ctx, doc); err != nil && s.logger != nil {
			s.logger.Warn("failed to persist read-repair", "error", err)
		}
	}

	return doc
}

// migrate performs the one-way forward migration for a version mismatch.
// The prior diagnostic history is intentionally discarded; the buffer is
// left with exactly one entry describing the transition.
func (s *Service) migrate(ctx context.Context, doc *Document) {
	from := doc.SchemaVersion
	doc.Logs = []LogEntry{{
		Timestamp: s.now(),
		Severity:  SeverityInfo,
		Message:   fmt.Sprintf("schema migrated from %s to %s", from, SchemaVersion),
		Context:   map[string]any{"from": from, "to": SchemaVersion},
	}}
	doc.SchemaVersion = SchemaVersion

	if s.logger != nil {
		s.logger.Info("schema version migrated", "from", from, "to", SchemaVersion)
	}

	// A failed persist is not a load failure; the migration re-runs on the
	// next load against the same stored version.
	if err := s.storage.SaveDocument(ctx, doc); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist migration", "error", err)
	}
}

// Save overwrites the persisted Document, stamps LastModified and notifies
// subscribers. Save failures propagate to the caller.
func (s *Service) Save(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc, Event{Type: EventModify, Topic: "document"})
}

// save persists doc and publishes events. Callers hold s.mu.
func (s *Service) save(ctx context.Context, doc *Document, events ...Event) error {
	if s.closed {
		return ErrClosed
	}
	doc.LastModified = s.now()
	if err := s.storage.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	for _, e := range events {
		s.publish(e)
	}
	return nil
}

// mutate runs one load -> mutate -> save cycle and returns the
// post-mutation Document snapshot. fn returns the events to publish, or an
// error to abort without saving.
func (s *Service) mutate(ctx context.Context, fn func(doc *Document) ([]Event, error)) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)
	events, err := fn(doc)
	if err != nil {
		return nil, err
	}
	if events == nil {
		// No-op mutation (e.g. deleting the reserved shelf).
		return doc.Clone(), nil
	}
	if err := s.save(ctx, doc, events...); err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// AddLog appends a diagnostic entry to the front of the log buffer and
// truncates it to LogCapacity. Debug entries are suppressed entirely unless
// the persisted AI configuration enables the debug flag; the filter is
// evaluated at call time.
func (s *Service) AddLog(ctx context.Context, severity Severity, message string, logCtx map[string]any) (*Document, error) {
	if severity == SeverityDebug && !s.debugEnabled(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.load(ctx).Clone(), nil
	}
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		entry := LogEntry{Timestamp: s.now(), Severity: severity, Message: message, Context: logCtx}
		doc.Logs = append([]LogEntry{entry}, doc.Logs...)
		if len(doc.Logs) > LogCapacity {
			doc.Logs = doc.Logs[:LogCapacity]
		}
		return []Event{{Type: EventCreate, Topic: "logs"}}, nil
	})
}

func (s *Service) debugEnabled(ctx context.Context) bool {
	cfg, err := s.storage.LoadAIConfig(ctx)
	if err != nil || cfg == nil {
		return false
	}
	return cfg.Debug
}

// TrackUsage prepends one usage event and truncates the list to
// UsageCapacity. No aggregation happens at write time.
func (s *Service) TrackUsage(ctx context.Context, ev UsageEvent) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		if ev.Timestamp.IsZero() {
			ev.Timestamp = s.now()
		}
		doc.Usage = append([]UsageEvent{ev}, doc.Usage...)
		if len(doc.Usage) > UsageCapacity {
			doc.Usage = doc.Usage[:UsageCapacity]
		}
		return []Event{{Type: EventCreate, Topic: "usage"}}, nil
	})
}

// Interests returns the persisted interest list.
func (s *Service) Interests(ctx context.Context) ([]string, error) {
	return s.storage.LoadInterests(ctx)
}

// SetInterests overwrites the persisted interest list.
func (s *Service) SetInterests(ctx context.Context, interests []string) error {
	if err := s.storage.SaveInterests(ctx, interests); err != nil {
		return fmt.Errorf("failed to save interests: %w", err)
	}
	s.publish(Event{Type: EventModify, Topic: "interests"})
	return nil
}

// AIConfig returns the persisted model-call configuration, defaulted when
// absent.
func (s *Service) AIConfig(ctx context.Context) AIConfig {
	cfg, err := s.storage.LoadAIConfig(ctx)
	if err != nil || cfg == nil {
		return DefaultAIConfig()
	}
	return *cfg
}

// SetAIConfig overwrites the persisted model-call configuration.
func (s *Service) SetAIConfig(ctx context.Context, cfg AIConfig) error {
	if err := s.storage.SaveAIConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save ai config: %w", err)
	}
	s.publish(Event{Type: EventModify, Topic: "config"})
	return nil
}

// FactoryReset unconditionally erases all persisted state: Document,
// interests, feeds, AI configuration and the sync key. Irreversible.
func (s *Service) FactoryReset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.storage.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset storage: %w", err)
	}
	s.publish(Event{Type: EventDelete, Topic: "document"})
	return nil
}

// Subscribe registers a listener for events whose topic matches pattern
// (doublestar glob, e.g. "articles/*" or "**"). It returns the event
// channel and a disposer; the disposer unregisters the listener and closes
// the channel. Slow subscribers lose events rather than blocking mutations.
func (s *Service) Subscribe(pattern string) (<-chan Event, func(), error) {
	if _, err := doublestar.Match(pattern, "probe"); err != nil {
		return nil, nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	sub := &subscription{pattern: pattern, ch: make(chan Event, s.eventBuffer)}
	s.subs[id] = sub

	dispose := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if cur, ok := s.subs[id]; ok && cur == sub {
			delete(s.subs, id)
			close(sub.ch)
		}
	}
	return sub.ch, dispose, nil
}

func (s *Service) publish(e Event) {
	if e.Timestamp == 0 {
		e.Timestamp = s.now().Unix()
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		ok, err := doublestar.Match(sub.pattern, e.Topic)
		if err != nil || !ok {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			if s.logger != nil {
				s.logger.Debug("subscriber buffer full, event dropped", "topic", e.Topic)
			}
		}
	}
}

// EnableWatch bridges out-of-process storage changes into the subscription
// stream. It requires a storage adapter implementing Watchable and runs
// until ctx is cancelled or the service is closed.
func (s *Service) EnableWatch(ctx context.Context) error {
	w, ok := s.storage.(Watchable)
	if !ok {
		return fmt.Errorf("storage does not support watching")
	}

	runCtx, cancel := context.WithCancel(ctx)
	events, err := w.Watch(runCtx, "**")
	if err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	if s.watchCancel != nil {
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("watch already enabled")
	}
	s.watchCancel = cancel
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				s.publish(e)
			}
		}
	}()
	return nil
}

// Close tears the service down: it stops the watch bridge and closes all
// subscriber channels. Further mutations return ErrClosed.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.watchCancel
	s.watchCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub.ch)
	}
	return nil
}
