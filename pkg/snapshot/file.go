package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devA2C3/cloudvisor-test/internal/models"
)

// FileStore keeps snapshots as <region>.json files in a directory
type FileStore struct {
	Dir string
}

// NewFileStore creates a FileStore; an empty dir means the working directory
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{Dir: dir}
}

// Path returns the file path of a region's snapshot
func (s *FileStore) Path(region string) string {
	return filepath.Join(s.Dir, Key(region))
}

// Write truncates and rewrites the region's file. A failure part way through
// can leave a partial file behind; callers are expected to Delete it.
func (s *FileStore) Write(_ context.Context, region string, snap models.Snapshot) (int64, error) {
	f, err := os.Create(s.Path(region))
	if err != nil {
		return 0, fmt.Errorf("error creating snapshot file: %w", err)
	}

	cw := &countingWriter{w: f}
	encErr := encode(cw, snap)
	closeErr := f.Close()
	if encErr != nil {
		return cw.n, fmt.Errorf("error writing snapshot file: %w", encErr)
	}
	if closeErr != nil {
		return cw.n, fmt.Errorf("error closing snapshot file: %w", closeErr)
	}

	return cw.n, nil
}

// Read loads the region's snapshot file
func (s *FileStore) Read(_ context.Context, region string) (models.Snapshot, error) {
	f, err := os.Open(s.Path(region))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path(region))
		}
		return nil, fmt.Errorf("error opening snapshot file: %w", err)
	}
	defer f.Close()

	return decode(f)
}

// Delete removes the region's snapshot file. A missing file is not an error.
func (s *FileStore) Delete(_ context.Context, region string) error {
	if err := os.Remove(s.Path(region)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error deleting snapshot file: %w", err)
	}
	return nil
}
