package store

import (
	"context"
	"sync"
)

// Slot is a single named durable value holding the serialized deck
// collection. It is read once at startup and overwritten wholesale after
// every mutation.
type Slot interface {
	// Read returns the last written value, or ErrSlotEmpty if nothing has
	// been written yet.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored value. Implementations must not leave a
	// partially written value behind on failure.
	Write(ctx context.Context, data []byte) error
}

// MemorySlot is a Slot kept in process memory. Nothing survives a restart.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

var _ Slot = (*MemorySlot)(nil)

// NewMemorySlot returns an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Read implements Slot.Read.
func (s *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Write implements Slot.Write.
func (s *MemorySlot) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.set = true
	return nil
}
