// Package redis keeps the deck slot in a Redis string key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/flashflow/internal/store"
)

// pingTimeout bounds the connectivity check in NewSlot.
const pingTimeout = 10 * time.Second

// Slot is a store.Slot backed by one Redis key. SET replaces the value
// atomically, so readers never see a partial collection.
type Slot struct {
	client *redis.Client
	key    string
}

var _ store.Slot = (*Slot)(nil)

// NewSlot connects to the server at url (redis://...) and returns the slot
// named key.
func NewSlot(ctx context.Context, url, key string) (*Slot, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return NewSlotFromClient(client, key), nil
}

// NewSlotFromClient wraps an existing client.
func NewSlotFromClient(client *redis.Client, key string) *Slot {
	return &Slot{client: client, key: key}
}

// Read implements store.Slot.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrSlotEmpty
	}
	if err != nil {
		return nil, store.NewStoreError("slot", "read", "redis GET failed", err)
	}
	return data, nil
}

// Write implements store.Slot.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return store.NewStoreError("slot", "write", "redis SET failed", err)
	}
	return nil
}

// Close closes the client.
func (s *Slot) Close() error {
	return s.client.Close()
}
