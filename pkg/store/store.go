// Package store implements core.Storage over a profile directory of JSON
// files. Each persisted key lives in its own file; writes are atomic
// (temp + rename) and reads self-heal: a missing or corrupt file is treated
// as "no existing value", never as a failure.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tamarel/folio/pkg/core"
)

// Persisted keys. One file per key, all inside the profile directory.
const (
	DocumentFile  = "library.json"
	InterestsFile = "interests.json"
	FeedsFile     = "feeds.json"
	AIConfigFile  = "ai.json"
	SyncKeyFile   = "sync.key"
)

// Config holds the configuration for the file-backed store.
type Config struct {
	// Dir is the profile directory.
	Dir string
	// MustExist requires the directory to already exist on Initialize.
	MustExist bool
	// Logger receives self-heal warnings and watch diagnostics. Optional.
	Logger *slog.Logger
	// ErrorHandler receives runtime watcher failures. Optional.
	ErrorHandler func(error)
}

// Store is a file-backed core.Storage and core.KeyStore.
type Store struct {
	Dir    string
	config Config

	mu            sync.RWMutex
	watcherActive bool
}

// New creates a store rooted at cfg.Dir.
func New(cfg Config) *Store {
	return &Store{Dir: cfg.Dir, config: cfg}
}

// Initialize ensures the profile directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("profile path does not exist: %s", s.Dir)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("profile path is not a directory: %s", s.Dir)
		}
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	return nil
}

// LoadDocument returns the persisted Document, or nil when absent or
// unreadable.
func (s *Store) LoadDocument(ctx context.Context) (*core.Document, error) {
	var doc core.Document
	ok, err := s.loadJSON(DocumentFile, &doc)
	if err != nil || !ok {
		return nil, err
	}
	return &doc, nil
}

// SaveDocument overwrites the persisted Document.
func (s *Store) SaveDocument(ctx context.Context, doc *core.Document) error {
	return s.saveJSON(DocumentFile, doc)
}

// LoadInterests returns the persisted interest list (nil when absent).
func (s *Store) LoadInterests(ctx context.Context) ([]string, error) {
	var interests []string
	if _, err := s.loadJSON(InterestsFile, &interests); err != nil {
		return nil, err
	}
	return interests, nil
}

// SaveInterests overwrites the persisted interest list.
func (s *Store) SaveInterests(ctx context.Context, interests []string) error {
	if interests == nil {
		interests = []string{}
	}
	return s.saveJSON(InterestsFile, interests)
}

// LoadFeeds returns the persisted feed list (nil when absent).
func (s *Store) LoadFeeds(ctx context.Context) ([]core.Feed, error) {
	var feeds []core.Feed
	if _, err := s.loadJSON(FeedsFile, &feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

// SaveFeeds overwrites the persisted feed list.
func (s *Store) SaveFeeds(ctx context.Context, feeds []core.Feed) error {
	if feeds == nil {
		feeds = []core.Feed{}
	}
	return s.saveJSON(FeedsFile, feeds)
}

// LoadAIConfig returns the persisted model-call configuration (nil when
// absent).
func (s *Store) LoadAIConfig(ctx context.Context) (*core.AIConfig, error) {
	var cfg core.AIConfig
	ok, err := s.loadJSON(AIConfigFile, &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

// SaveAIConfig overwrites the persisted model-call configuration.
func (s *Store) SaveAIConfig(ctx context.Context, cfg core.AIConfig) error {
	return s.saveJSON(AIConfigFile, cfg)
}

// LoadSyncKey returns the persisted sync secret, or "" when absent.
func (s *Store) LoadSyncKey(ctx context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, SyncKeyFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read sync key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveSyncKey persists the sync secret. The key file is private to the
// current user.
func (s *Store) SaveSyncKey(ctx context.Context, key string) error {
	return writeFileAtomic(filepath.Join(s.Dir, SyncKeyFile), []byte(key+"\n"), 0600)
}

// Reset erases every persisted key. Irreversible.
func (s *Store) Reset(ctx context.Context) error {
	var errs []error
	for _, name := range []string{DocumentFile, InterestsFile, FeedsFile, AIConfigFile, SyncKeyFile} {
		if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadJSON reads and decodes one key. A missing file reports (false, nil);
// a corrupt file is logged and reported as absent so the caller self-heals.
func (s *Store) loadJSON(name string, v any) (bool, error) {
	path := filepath.Join(s.Dir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		if s.config.Logger != nil {
			s.config.Logger.Warn("corrupt state file, treating as empty", "file", name, "error", err)
		}
		return false, nil
	}
	return true, nil
}

// saveJSON encodes and atomically writes one key. Failures (quota,
// permissions) surface to the caller.
func (s *Store) saveJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := writeFileAtomic(filepath.Join(s.Dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

var _ core.Storage = (*Store)(nil)
var _ core.KeyStore = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
