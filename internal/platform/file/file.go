// Package file keeps the deck slot as a JSON file in a data directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/phrazzld/flashflow/internal/store"
)

// Extension is appended to the slot key to form the file name.
const Extension = ".json"

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Slot is a store.Slot stored in <dir>/<key>.json. Writes go to a
// temporary file in the same directory which is then renamed over the
// target, so a crash leaves either the old or the new collection.
type Slot struct {
	dir  string
	path string
}

var _ store.Slot = (*Slot)(nil)

// NewSlot returns the slot named key under dir, creating dir if needed.
func NewSlot(dir, key string) (*Slot, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}
	if !keyPattern.MatchString(key) {
		return nil, fmt.Errorf("invalid slot key %q", key)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return &Slot{dir: dir, path: filepath.Join(dir, key+Extension)}, nil
}

// Path returns the file the slot is stored in.
func (s *Slot) Path() string {
	return s.path
}

// Read implements store.Slot.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrSlotEmpty
	}
	if err != nil {
		return nil, store.NewStoreError("slot", "read", "file read failed", err)
	}
	return data, nil
}

// Write implements store.Slot.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.writeAtomic(data); err != nil {
		return store.NewStoreError("slot", "write", "file write failed", err)
	}
	return nil
}

func (s *Slot) writeAtomic(data []byte) (err error) {
	tmp, err := os.CreateTemp(s.dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
