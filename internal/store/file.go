package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps each collection in <dir>/<name>.json.
type FileStore struct {
	*snapshotStore
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}
	return &FileStore{
		snapshotStore: &snapshotStore{b: fileBackend{dir: dir}},
		dir:           dir,
	}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

type fileBackend struct {
	dir string
}

func (f fileBackend) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f fileBackend) read(name string) ([]byte, error) {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// write replaces the file atomically so readers never see a partial snapshot.
func (f fileBackend) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path(name))
}

func (f fileBackend) clear() error {
	raws, err := filepath.Glob(filepath.Join(f.dir, "*-raw.json"))
	if err != nil {
		return err
	}
	paths := append(raws, f.path(jobsCollection), f.path(logsCollection))
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (f fileBackend) close() error { return nil }
