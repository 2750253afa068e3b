package folio

import (
	"log/slog"

	"github.com/tamarel/folio/internal/platform"
	"github.com/tamarel/folio/pkg/core"
	"github.com/tamarel/folio/pkg/syncer"
)

// Version exposes the version of the library.
const Version = "0.3.0"

// --- Types ---

// Document is a public alias for the root aggregate.
type Document = core.Document

// Service is a public alias for the library service.
type Service = core.Service

// Event is a public alias for change events.
type Event = core.Event

// Syncer is a public alias for the encrypted sync protocol.
type Syncer = syncer.Syncer

// Drive is a public alias for the remote object store seam.
type Drive = syncer.Drive

// --- Configuration ---

// Option defines a functional option for configuring folio.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage allows injecting a custom storage adapter.
func WithStorage(storage core.Storage) Option {
	return platform.WithStorage(storage)
}

// WithDrive injects the remote object store used for encrypted sync.
func WithDrive(drive syncer.Drive) Option {
	return platform.WithDrive(drive)
}

// WithRemoteDir backs the sync Drive with a local directory.
func WithRemoteDir(dir string) Option {
	return platform.WithRemoteDir(dir)
}

// WithRemoteName overrides the well-known remote object name.
func WithRemoteName(name string) Option {
	return platform.WithRemoteName(name)
}

// WithMustExist ensures the profile directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the `go run` sandbox safety mechanism.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithEventBuffer sets the per-subscriber event channel capacity.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithErrorHandler registers a callback for runtime watcher failures.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// --- Factories ---

// New opens (or creates) the profile at dir and returns the service.
func New(dir string, opts ...Option) (*core.Service, error) {
	return platform.New(dir, opts...)
}

// Open opens an existing profile at dir; it fails when the directory does
// not exist.
func Open(dir string, opts ...Option) (*core.Service, error) {
	return platform.New(dir, append([]Option{platform.WithMustExist(true)}, opts...)...)
}

// NewSyncer builds the encrypted sync protocol for the profile at dir.
func NewSyncer(dir string, opts ...Option) (*syncer.Syncer, error) {
	return platform.NewSyncer(dir, opts...)
}

// --- Utils ---

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// ResolveProfilePath determines the actual profile directory based on
// safety rules.
func ResolveProfilePath(userPath string, forceTemp bool) string {
	return platform.ResolveProfilePath(userPath, forceTemp)
}
