// Package fsstore persists accelerator module bytes on the local
// filesystem: one directory per namespace, one file per cache key.
//
// Writes go through a temp file and rename, so loader instances sharing a
// namespace never observe torn bytes. Keys are path-escaped before use as
// file names.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// Store implements loader.Storage on the local filesystem.
type Store struct {
	root string
	dir  string // namespace directory, set by Open
}

// New creates a store rooted at the given directory. An empty root resolves
// to os.UserCacheDir()/docaccel at Open time.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) namespaceDir(namespace string) (string, error) {
	root := s.root
	if root == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("fsstore: resolving user cache dir: %w", err)
		}
		root = filepath.Join(base, "docaccel")
	}
	return filepath.Join(root, url.PathEscape(namespace)), nil
}

// Open creates the namespace directory if needed.
func (s *Store) Open(_ context.Context, namespace string) error {
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fsstore: creating namespace %q: %w", namespace, err)
	}
	s.dir = dir
	return nil
}

func (s *Store) keyPath(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key))
}

// Match returns the bytes persisted under key, if any.
func (s *Store) Match(_ context.Context, key string) ([]byte, bool, error) {
	if s.dir == "" {
		return nil, false, errors.New("fsstore: not opened")
	}
	data, err := os.ReadFile(s.keyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fsstore: reading %q: %w", key, err)
	}
	return data, true, nil
}

// Put persists bytes under key, overwriting any previous value. The write
// is atomic with respect to concurrent readers.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	if s.dir == "" {
		return errors.New("fsstore: not opened")
	}
	// The namespace directory may have been removed by Delete since Open.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("fsstore: recreating namespace dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "put-*")
	if err != nil {
		return fmt.Errorf("fsstore: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("fsstore: writing %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("fsstore: closing temp file for %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.keyPath(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("fsstore: committing %q: %w", key, err)
	}
	return nil
}

// Delete removes the whole namespace directory.
func (s *Store) Delete(_ context.Context, namespace string) error {
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("fsstore: deleting namespace %q: %w", namespace, err)
	}
	return nil
}
