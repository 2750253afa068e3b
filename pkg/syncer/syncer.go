package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/tamarel/folio/pkg/core"
)

// DefaultRemoteName is the well-known object name for a profile's mirrored
// Document inside the app-private remote folder.
const DefaultRemoteName = "folio-library.json"

// Status is the connection state observed by callers (e.g. a sync badge).
// Transitions: disconnected -> syncing -> {synced | error}, with
// synced -> syncing re-entrant on every subsequent push.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusSyncing      Status = "syncing"
	StatusSynced       Status = "synced"
	StatusError        Status = "error"
)

// Envelope is the uploaded payload. The Document is never uploaded in
// plaintext; Encrypted is the marker a downloader checks before
// decrypting. Payloads without the marker are treated as legacy plaintext.
type Envelope struct {
	Ciphertext string `json:"ciphertext"`
	Encrypted  bool   `json:"encrypted"`
}

// Config holds the configuration for a Syncer.
type Config struct {
	Drive      Drive
	Keys       core.KeyStore
	Logger     *slog.Logger
	RemoteName string // defaults to DefaultRemoteName
}

// Syncer transports the Document to and from a Drive with
// confidentiality. It never propagates errors past its boundary: Upload
// reports bool, Download reports nil. There is no retry, no conflict
// detection and no merge; a push replaces whatever is remote
// (last-write-wins, accepted limitation). Guarding against concurrent
// pushes is the caller's responsibility.
type Syncer struct {
	drive  Drive
	keys   core.KeyStore
	logger *slog.Logger
	name   string

	mu     sync.Mutex
	status Status
}

// New creates a Syncer.
func New(cfg Config) *Syncer {
	name := cfg.RemoteName
	if name == "" {
		name = DefaultRemoteName
	}
	return &Syncer{
		drive:  cfg.Drive,
		keys:   cfg.Keys,
		logger: cfg.Logger,
		name:   name,
		status: StatusDisconnected,
	}
}

// Status returns the current connection state.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Syncer) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// EnsureKey returns the local sync secret, generating and persisting one on
// first use.
func (s *Syncer) EnsureKey(ctx context.Context) (string, error) {
	key, err := s.keys.LoadSyncKey(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load sync key: %w", err)
	}
	if key != "" {
		return key, nil
	}
	key, err = NewSecret()
	if err != nil {
		return "", err
	}
	if err := s.keys.SaveSyncKey(ctx, key); err != nil {
		return "", fmt.Errorf("failed to persist sync key: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("generated new sync key")
	}
	return key, nil
}

// Upload encrypts the Document and replaces the remote object. Without a
// local sync key it returns false before any Drive call. Any encryption or
// transport failure is reported as false, never thrown.
func (s *Syncer) Upload(ctx context.Context, doc *core.Document) bool {
	key, err := s.keys.LoadSyncKey(ctx)
	if err != nil || key == "" {
		if s.logger != nil {
			s.logger.Warn("upload skipped: no sync key", "error", err)
		}
		s.setStatus(StatusError)
		return false
	}

	s.setStatus(StatusSyncing)

	plaintext, err := json.Marshal(doc)
	if err != nil {
		s.fail("failed to encode document", err)
		return false
	}
	ciphertext, err := Encrypt(plaintext, key)
	if err != nil {
		s.fail("failed to encrypt document", err)
		return false
	}
	body, err := json.Marshal(Envelope{Ciphertext: ciphertext, Encrypted: true})
	if err != nil {
		s.fail("failed to encode envelope", err)
		return false
	}

	id, err := s.drive.FindByName(ctx, s.name)
	if err != nil {
		s.fail("failed to locate remote object", err)
		return false
	}
	if id == "" {
		if _, err := s.drive.Create(ctx, s.name, body); err != nil {
			s.fail("failed to create remote object", err)
			return false
		}
	} else {
		if err := s.drive.Update(ctx, id, body); err != nil {
			s.fail("failed to update remote object", err)
			return false
		}
	}

	s.setStatus(StatusSynced)
	if s.logger != nil {
		s.logger.Debug("document uploaded", "object", s.name)
	}
	return true
}

// Download fetches an object and returns the decoded Document. Encrypted
// payloads are decrypted with the local sync key; payloads without the
// encrypted marker are parsed verbatim (legacy/foreign documents). Any
// failure (missing key, decrypt failure, transport failure) yields nil.
func (s *Syncer) Download(ctx context.Context, fileID string) *core.Document {
	s.setStatus(StatusSyncing)

	raw, err := s.drive.Get(ctx, fileID)
	if err != nil {
		s.fail("failed to fetch remote object", err)
		return nil
	}

	var env Envelope
	plaintext := raw
	if err := json.Unmarshal(raw, &env); err == nil && env.Encrypted {
		key, kerr := s.keys.LoadSyncKey(ctx)
		if kerr != nil || key == "" {
			s.fail("cannot decrypt: no sync key", kerr)
			return nil
		}
		plaintext, err = Decrypt(env.Ciphertext, key)
		if err != nil {
			s.fail("failed to decrypt remote object", err)
			return nil
		}
	}

	var doc core.Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		s.fail("failed to decode remote document", err)
		return nil
	}
	doc.Repair()

	s.setStatus(StatusSynced)
	return &doc
}

// Pull locates the well-known object and downloads it. Returns nil when no
// remote document exists or on any failure.
func (s *Syncer) Pull(ctx context.Context) *core.Document {
	id, err := s.drive.FindByName(ctx, s.name)
	if err != nil {
		s.fail("failed to locate remote object", err)
		return nil
	}
	if id == "" {
		if s.logger != nil {
			s.logger.Debug("no remote document", "object", s.name)
		}
		return nil
	}
	return s.Download(ctx, id)
}

func (s *Syncer) fail(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, "error", err)
	}
	s.setStatus(StatusError)
}

// SyncerState exposes internal state for observability.
type SyncerState struct {
	Status     Status `json:"status"`
	RemoteName string `json:"remote_name"`
}

// State implements introspection.Introspectable.
func (s *Syncer) State() any {
	return SyncerState{Status: s.Status(), RemoteName: s.name}
}

// ComponentType implements introspection.Component.
func (s *Syncer) ComponentType() string {
	return "syncer"
}

var _ introspection.Introspectable = (*Syncer)(nil)
var _ introspection.Component = (*Syncer)(nil)
