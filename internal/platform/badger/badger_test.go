package badger

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/flashflow/internal/platform/logger"
	"github.com/phrazzld/flashflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	slot, err := NewSlot(InMemoryConfig(), "flashflow_decks")
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	_, err = slot.Read(ctx)
	assert.ErrorIs(t, err, store.ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[1]`)))
	require.NoError(t, slot.Write(ctx, []byte(`[1,2]`)))

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), data)
}

func TestPersistentSlotSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := DefaultConfig(t.TempDir())
	cfg.GCInterval = time.Hour
	cfg.Logger = logger.Discard()

	slot, err := NewSlot(cfg, "flashflow_decks")
	require.NoError(t, err)
	require.NoError(t, slot.Write(ctx, []byte(`[{"id":"deck-1"}]`)))
	require.NoError(t, slot.Close())
	require.NoError(t, slot.Close(), "close is idempotent")

	reopened, err := NewSlot(cfg, "flashflow_decks")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	data, err := reopened.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"deck-1"}]`, string(data))
}

func TestSlotKeysAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := DefaultConfig(t.TempDir())
	cfg.GCInterval = 0

	a, err := NewSlot(cfg, "a")
	require.NoError(t, err)
	require.NoError(t, a.Write(ctx, []byte(`"a"`)))
	require.NoError(t, a.Close())

	b, err := NewSlot(cfg, "b")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	_, err = b.Read(ctx)
	assert.ErrorIs(t, err, store.ErrSlotEmpty)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()
	slot, err := NewSlot(InMemoryConfig(), "k")
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, slot.Write(ctx, []byte("x")), context.Canceled)
	_, err = slot.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()
	_, err := Open(Config{})
	assert.Error(t, err)

	_, err = NewSlot(InMemoryConfig(), "")
	assert.Error(t, err)

	cfg := DefaultConfig(t.TempDir())
	cfg.GCDiscardRatio = 2
	_, err = NewSlot(cfg, "k")
	assert.Error(t, err)
}
