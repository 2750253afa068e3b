package platform

import (
	"log/slog"

	"github.com/tamarel/folio/pkg/core"
	"github.com/tamarel/folio/pkg/syncer"
)

// options holds the internal configuration for the folio service.
type options struct {
	storage core.Storage
	drive   syncer.Drive
	logger  *slog.Logger
	config  map[string]interface{}
}

// Option defines a functional option for configuring folio.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage injects a custom storage adapter (e.g. mock, SQL).
// If provided, the default file-backed store is skipped.
func WithStorage(storage core.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithDrive injects the remote object store used for encrypted sync.
func WithDrive(drive syncer.Drive) Option {
	return func(o *options) {
		o.drive = drive
	}
}

// WithRemoteDir backs the sync Drive with a local directory (synced
// folders, tests). Ignored when WithDrive is set.
func WithRemoteDir(dir string) Option {
	return func(o *options) {
		o.config["remote_dir"] = dir
	}
}

// WithRemoteName overrides the well-known remote object name.
func WithRemoteName(name string) Option {
	return func(o *options) {
		o.config["remote_name"] = name
	}
}

// WithMustExist ensures the profile directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox mechanism when running via `go run`.
// By default (true), folio forces a temporary directory to prevent
// accidental data loss during development.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithEventBuffer sets the per-subscriber event channel capacity.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithErrorHandler registers a callback for runtime watcher failures.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["error_handler"] = fn
	}
}
