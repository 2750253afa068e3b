package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Drive is the remote object store seam: a folder-scoped blob store
// supporting lookup by name, fetch by id, create and update. Cloud
// implementations are supplied by the application; FolderDrive below backs
// the same contract with a local directory (synced folders, tests).
type Drive interface {
	// FindByName returns the object id for a name inside the app folder,
	// or "" when no such object exists.
	FindByName(ctx context.Context, name string) (string, error)

	// Get fetches raw object content by id.
	Get(ctx context.Context, id string) ([]byte, error)

	// Create stores a new object under name and returns its id.
	Create(ctx context.Context, name string, data []byte) (string, error)

	// Update overwrites an existing object by id.
	Update(ctx context.Context, id string, data []byte) error
}

// FolderDrive implements Drive over a directory. Object ids are file names.
type FolderDrive struct {
	Dir string
}

// NewFolderDrive creates a directory-backed Drive, creating the directory
// if needed.
func NewFolderDrive(dir string) (*FolderDrive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create drive directory: %w", err)
	}
	return &FolderDrive{Dir: dir}, nil
}

// FindByName implements Drive.
func (d *FolderDrive) FindByName(ctx context.Context, name string) (string, error) {
	if _, err := os.Stat(filepath.Join(d.Dir, name)); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return name, nil
}

// Get implements Drive.
func (d *FolderDrive) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Dir, id))
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", id, err)
	}
	return data, nil
}

// Create implements Drive.
func (d *FolderDrive) Create(ctx context.Context, name string, data []byte) (string, error) {
	if err := d.write(name, data); err != nil {
		return "", err
	}
	return name, nil
}

// Update implements Drive.
func (d *FolderDrive) Update(ctx context.Context, id string, data []byte) error {
	return d.write(id, data)
}

// write lands the blob atomically so a concurrent reader never observes a
// partial object.
func (d *FolderDrive) write(name string, data []byte) error {
	path := filepath.Join(d.Dir, name)
	tmp, err := os.CreateTemp(d.Dir, ".folio-drive-*")
	if err != nil {
		return fmt.Errorf("failed to create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store object %s: %w", name, err)
	}
	return nil
}

var _ Drive = (*FolderDrive)(nil)
