// Package localdisk persists keys as files under a base directory. It backs
// single-node deployments and tests where no Valkey is running; writes are
// atomic (temp file + rename) so a crash never leaves a torn payload.
package localdisk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/upt-maps/campusmap/internal/core/ports"
)

// Storage implements ports.KVStorage on the local filesystem.
type Storage struct {
	dir string
}

// New creates the base directory if needed.
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Get reads the file for key. A missing file maps to ports.ErrNoData.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrNoData
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set writes the value atomically: temp file in the same directory, then
// rename over the destination.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	dst := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".kv-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key; deleting an absent key is a no-op.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// path maps a key to a filename, flattening separator characters so keys
// like "campusmap:paths:v1" stay inside the base directory.
func (s *Storage) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}
