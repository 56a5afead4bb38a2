// Package filestore keeps each pin as its own JSON file in a directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

const ext = ".json"

// Store implements ports.PinRepository on the local filesystem.
type Store struct {
	dir string
}

// New creates dir if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create pin dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+ext)
}

// Save writes the pin to a temporary file and renames it into place, so
// readers never observe a partial record.
func (s *Store) Save(ctx context.Context, pin *domain.Pin) error {
	if !domain.SafeID(pin.ID) {
		return fmt.Errorf("%w: unsafe id %q", domain.ErrInvalidPin, pin.ID)
	}
	data, err := json.MarshalIndent(pin, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pin: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".pin-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write pin %s: %w", pin.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close pin %s: %w", pin.ID, err)
	}
	if err := os.Rename(tmpName, s.path(pin.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename pin %s: %w", pin.ID, err)
	}
	return nil
}

// Get reads a single pin.
func (s *Store) Get(ctx context.Context, id string) (*domain.Pin, error) {
	if !domain.SafeID(id) {
		return nil, domain.ErrPinNotFound
	}
	pin, err := readPin(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrPinNotFound
	}
	if err != nil {
		return nil, err
	}
	return pin, nil
}

// List reads every *.json file in the directory. Files that cannot be read
// or decoded are logged and skipped.
func (s *Store) List(ctx context.Context) ([]domain.Pin, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read pin dir: %w", err)
	}

	pins := make([]domain.Pin, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pin, err := readPin(filepath.Join(s.dir, e.Name()))
		if err != nil {
			// Deleted between ReadDir and open.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			slog.Warn("skipping unreadable pin", "file", e.Name(), "error", err)
			metrics.PinReadErrors.WithLabelValues("file").Inc()
			continue
		}
		pins = append(pins, *pin)
	}
	return pins, nil
}

// Delete removes the pin's file.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if !domain.SafeID(id) {
		return false, nil
	}
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove pin %s: %w", id, err)
	}
	return true, nil
}

// Ping checks that the directory is still accessible.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func readPin(path string) (*domain.Pin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pin domain.Pin
	if err := json.Unmarshal(data, &pin); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &pin, nil
}
