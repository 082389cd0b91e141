package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/flashflow/internal/platform/logger"
	"github.com/phrazzld/flashflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotReadWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")

	slot, err := NewSlot(dir, "flashflow_decks")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flashflow_decks.json"), slot.Path())

	_, err = slot.Read(ctx)
	assert.ErrorIs(t, err, store.ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[]`)))
	require.NoError(t, slot.Write(ctx, []byte(`[{"id":"d1"}]`)))

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"d1"}]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files are renamed away")
}

func TestSlotWriteFailureKeepsOldValue(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	ctx := context.Background()
	dir := t.TempDir()

	slot, err := NewSlot(dir, "decks")
	require.NoError(t, err)
	require.NoError(t, slot.Write(ctx, []byte(`"old"`)))

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o750) })

	err = slot.Write(ctx, []byte(`"new"`))
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `"old"`, string(data))
}

func TestNewSlotValidation(t *testing.T) {
	t.Parallel()
	_, err := NewSlot("", "decks")
	assert.Error(t, err)

	for _, key := range []string{"", "../escape", "a/b", "has space"} {
		_, err := NewSlot(t.TempDir(), key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestDeckStoreOverFileSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	slot, err := NewSlot(dir, "decks")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(slot.Path(), []byte(`not json`), 0o600))

	s := store.NewDeckStore(slot, logger.Discard())
	assert.Equal(t, 0, s.Load(ctx))
	decks, err := s.Decks()
	require.NoError(t, err)
	assert.Empty(t, decks)
}
