package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/flashflow/internal/platform/logger"
	"github.com/phrazzld/flashflow/internal/platform/postgres"
	"github.com/phrazzld/flashflow/internal/store"
	"github.com/phrazzld/flashflow/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotIntegration(t *testing.T) {
	url := testdb.RequireDatabaseURL(t)
	ctx := context.Background()

	key := "test_" + uuid.NewString()
	slot, err := postgres.NewSlot(ctx, url, key, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = slot.DB().ExecContext(context.Background(),
			"DELETE FROM deck_slots WHERE slot_key = $1", key)
		_ = slot.Close()
	})

	_, err = slot.Read(ctx)
	assert.ErrorIs(t, err, store.ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[]`)))
	require.NoError(t, slot.Write(ctx, []byte(`[{"id":"deck-1"}]`)))

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"deck-1"}]`, string(data))
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	t.Parallel()
	_, err := postgres.Open(context.Background(), "")
	assert.Error(t, err)
}
