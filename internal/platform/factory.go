package platform

import (
	"context"
	"fmt"

	"github.com/tamarel/folio/pkg/core"
	"github.com/tamarel/folio/pkg/store"
	"github.com/tamarel/folio/pkg/syncer"
)

// New initializes the profile at dir and returns the configured service.
func New(dir string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	storage, err := initStorage(dir, o)
	if err != nil {
		return nil, err
	}

	coreOpts := []core.Option{}
	if o.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(o.logger))
	}
	if size, ok := o.config["event_buffer"].(int); ok && size > 0 {
		coreOpts = append(coreOpts, core.WithEventBuffer(size))
	}

	return core.NewService(storage, coreOpts...), nil
}

// NewSyncer builds the encrypted sync protocol for the profile at dir.
// A Drive must be supplied via WithDrive or WithRemoteDir.
func NewSyncer(dir string, opts ...Option) (*syncer.Syncer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	drive := o.drive
	if drive == nil {
		remoteDir, ok := o.config["remote_dir"].(string)
		if !ok || remoteDir == "" {
			return nil, fmt.Errorf("no drive configured: use WithDrive or WithRemoteDir")
		}
		var err error
		drive, err = syncer.NewFolderDrive(remoteDir)
		if err != nil {
			return nil, err
		}
	}

	storage, err := initStorage(dir, o)
	if err != nil {
		return nil, err
	}
	keys, ok := storage.(core.KeyStore)
	if !ok {
		return nil, fmt.Errorf("storage does not persist sync keys")
	}

	name, _ := o.config["remote_name"].(string)
	return syncer.New(syncer.Config{
		Drive:      drive,
		Keys:       keys,
		Logger:     o.logger,
		RemoteName: name,
	}), nil
}

// initStorage resolves the profile path and prepares the storage adapter.
func initStorage(dir string, o *options) (core.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	errorHandler, _ := o.config["error_handler"].(func(error))

	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	useTemp := tempDir || (IsDevRun() && devSafety)
	resolved := ResolveProfilePath(dir, useTemp)

	if useTemp && o.logger != nil {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", dir, "resolved_path", resolved)
	}

	s := store.New(store.Config{
		Dir:          resolved,
		MustExist:    mustExist,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
	if err := s.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}
