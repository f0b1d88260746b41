// Package media stores raw media bytes (synthesized speech, attached images)
// on disk and hands out opaque references to them. The transcript only ever
// carries references, never the bytes themselves.
package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes media payloads under a single directory with uuid-derived
// names. References have the shape "file://<abs path>".
type Store struct {
	dir string
}

// NewStore creates the backing directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "sahayak-media")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put persists data and returns its reference. ext is the file extension
// including the dot, e.g. ".mp3".
func (s *Store) Put(data []byte, ext string) (string, error) {
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("media: write %s: %w", name, err)
	}
	return "file://" + path, nil
}
