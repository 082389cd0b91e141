package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSlotDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE deck_slots (
		slot_key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	require.NoError(t, err)
	return db
}

func TestSQLSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openSlotDB(t)

	slot := NewSQLSlot(db, "decks")
	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[1]`)))
	require.NoError(t, slot.Write(ctx, []byte(`[1,2]`)))

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), data)

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM deck_slots`).Scan(&rows))
	assert.Equal(t, 1, rows)

	other := NewSQLSlot(db, "other")
	_, err = other.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestSQLSlotMissingTable(t *testing.T) {
	t.Parallel()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mapped := 0
	slot := NewSQLSlot(db, "decks", WithErrorMapper(func(err error) error {
		mapped++
		return err
	}))

	_, err = slot.Read(context.Background())
	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.NotErrorIs(t, err, ErrSlotEmpty)

	err = slot.Write(context.Background(), []byte(`[]`))
	assert.Error(t, err)
	assert.Equal(t, 2, mapped)
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "?", QuestionPlaceholder(3))
	assert.Equal(t, "$3", DollarPlaceholder(3))

	slot := NewSQLSlot(nil, "k", WithPlaceholder(DollarPlaceholder))
	assert.Contains(t, slot.upsertQuery(), "VALUES ($1, $2, $3)")
}

func TestDeckStoreOverSQLSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openSlotDB(t)

	st := NewDeckStore(NewSQLSlot(db, "decks"), nil)
	st.Load(ctx)
	require.NoError(t, st.Update(ctx, appendDeck(testDeck("deck-1"))))

	reloaded := NewDeckStore(NewSQLSlot(db, "decks"), nil)
	assert.Equal(t, 1, reloaded.Load(ctx))
}
