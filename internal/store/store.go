// Package store provides the filesystem artifact cache used by every
// pipeline stage. An artifact is cached when its file exists and is
// non-empty; empty files are treated as absent so interrupted writes get
// redone on the next run.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is a keyed artifact cache. Keys are plain file names relative to
// the store root.
type Store interface {
	// Exists reports whether the artifact is cached (present and non-empty).
	Exists(key string) bool

	// Read returns the artifact contents.
	Read(key string) (string, error)

	// Write persists the artifact, creating parent directories as needed.
	Write(key string, content string) error

	// Path returns the absolute location an artifact is (or would be)
	// stored at.
	Path(key string) string

	// List returns the keys of all cached artifacts whose names carry
	// the given prefix and suffix, sorted lexically.
	List(prefix, suffix string) ([]string, error)
}

// DirStore is a Store rooted at a single directory.
type DirStore struct {
	root string
}

// Compile-time interface compliance check.
var _ Store = (*DirStore)(nil)

// NewDirStore creates the root directory if needed and returns a store
// over it.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %q: %w", root, err)
	}
	return &DirStore{root: root}, nil
}

func (s *DirStore) Exists(key string) bool {
	info, err := os.Stat(s.Path(key))
	return err == nil && !info.IsDir() && info.Size() > 0
}

func (s *DirStore) Read(key string) (string, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return "", fmt.Errorf("read artifact %q: %w", key, err)
	}
	return string(data), nil
}

func (s *DirStore) Write(key string, content string) error {
	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory for %q: %w", key, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write artifact %q: %w", key, err)
	}
	return nil
}

func (s *DirStore) Path(key string) string {
	return filepath.Join(s.root, key)
}

func (s *DirStore) List(prefix, suffix string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() ||
			!strings.HasPrefix(entry.Name(), prefix) ||
			!strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		if !s.Exists(entry.Name()) {
			continue
		}
		keys = append(keys, entry.Name())
	}
	sort.Strings(keys)
	return keys, nil
}
