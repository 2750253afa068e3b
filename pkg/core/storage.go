package core

import "context"

// Storage defines the contract for persisting the profile's state.
// Adhering to this interface keeps the service independent of the
// underlying mechanism (filesystem, SQL, browser storage, in-memory).
//
// Load methods must self-heal: a missing or unreadable value is reported as
// absent (zero value, nil error), never as a failure. Save methods return
// errors to the caller (quota, permissions).
type Storage interface {
	// Initialize ensures the underlying storage is ready (e.g. create the
	// profile directory).
	Initialize(ctx context.Context) error

	// LoadDocument returns the persisted Document, or nil if none exists
	// or the stored bytes are unreadable.
	LoadDocument(ctx context.Context) (*Document, error)

	// SaveDocument overwrites the persisted Document.
	SaveDocument(ctx context.Context, doc *Document) error

	// LoadInterests returns the persisted interest list (nil when absent).
	LoadInterests(ctx context.Context) ([]string, error)

	// SaveInterests overwrites the persisted interest list.
	SaveInterests(ctx context.Context, interests []string) error

	// LoadFeeds returns the persisted feed list (nil when absent).
	LoadFeeds(ctx context.Context) ([]Feed, error)

	// SaveFeeds overwrites the persisted feed list.
	SaveFeeds(ctx context.Context, feeds []Feed) error

	// LoadAIConfig returns the persisted model-call configuration, or nil
	// when absent.
	LoadAIConfig(ctx context.Context) (*AIConfig, error)

	// SaveAIConfig overwrites the persisted model-call configuration.
	SaveAIConfig(ctx context.Context, cfg AIConfig) error

	// Reset unconditionally erases all persisted state, including the sync
	// key. Irreversible; confirmation is a caller concern.
	Reset(ctx context.Context) error
}

// KeyStore persists the sync secret. The secret never leaves the device
// unencrypted; only its local storage is abstracted here.
type KeyStore interface {
	// LoadSyncKey returns the persisted secret, or "" when absent.
	LoadSyncKey(ctx context.Context) (string, error)

	// SaveSyncKey persists the secret.
	SaveSyncKey(ctx context.Context, key string) error
}

// Watchable is implemented by storage adapters that can observe
// out-of-process changes to the persisted state.
type Watchable interface {
	// Watch emits events for external changes matching pattern until ctx is
	// cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
