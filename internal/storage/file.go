package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var safeKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStorage stores each key as <dir>/<key>.json.
// Writes go to a temp file first and are renamed into place.
type FileStorage struct {
	mu  sync.Mutex
	dir string
}

// NewFileStorage creates the directory if needed and returns a file-backed storage.
func NewFileStorage(dir string, perm os.FileMode) (*FileStorage, error) {
	if err := os.MkdirAll(dir, perm); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Path returns the file that holds key.
func (f *FileStorage) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (f *FileStorage) SetItem(ctx context.Context, key string, value []byte) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.Path(key))
}

func (f *FileStorage) Close() error {
	return nil
}

func checkKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !safeKey.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
