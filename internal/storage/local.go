package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Local stores each key as an indented JSON file under a directory.
type Local struct {
	dir string
	mu  sync.RWMutex
}

// NewLocal creates the directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Local{dir: dir}, nil
}

// path sanitizes the key so it cannot escape the directory.
func (l *Local) path(key string) string {
	return filepath.Join(l.dir, filepath.Base(key)+".json")
}

func (l *Local) Get(_ context.Context, key string, dst any) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	file, err := os.Open(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", key, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(dst); err != nil {
		return true, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Put writes to a temp file and renames it so readers never see a partial document.
func (l *Local) Put(_ context.Context, key string, v any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.path(key)
	tmp, err := os.CreateTemp(l.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (l *Local) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := os.Remove(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) Close() error { return nil }
