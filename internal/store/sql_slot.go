package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotTable is the table SQL backends keep slots in. Each backend's
// migrations create it.
const SlotTable = "deck_slots"

// Placeholder renders the n-th (1-based) bind parameter of a query.
type Placeholder func(n int) string

// QuestionPlaceholder renders "?" (SQLite, MySQL).
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder renders "$n" (PostgreSQL).
func DollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

// SQLSlot is a Slot stored as one row of SlotTable.
type SQLSlot struct {
	db          *sql.DB
	key         string
	placeholder Placeholder
	mapError    func(error) error
	now         func() time.Time
}

var _ Slot = (*SQLSlot)(nil)

// SQLSlotOption configures a SQLSlot.
type SQLSlotOption func(*SQLSlot)

// WithPlaceholder sets the bind parameter style. The default is "?".
func WithPlaceholder(p Placeholder) SQLSlotOption {
	return func(s *SQLSlot) { s.placeholder = p }
}

// WithErrorMapper translates driver errors before they are returned.
func WithErrorMapper(fn func(error) error) SQLSlotOption {
	return func(s *SQLSlot) { s.mapError = fn }
}

// NewSQLSlot returns a slot that reads and writes the row named key.
// The table must already exist.
func NewSQLSlot(db *sql.DB, key string, opts ...SQLSlotOption) *SQLSlot {
	s := &SQLSlot{
		db:          db,
		key:         key,
		placeholder: QuestionPlaceholder,
		mapError:    func(err error) error { return err },
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read implements Slot.
func (s *SQLSlot) Read(ctx context.Context) ([]byte, error) {
	return s.read(ctx, s.db)
}

func (s *SQLSlot) read(ctx context.Context, q DBTX) ([]byte, error) {
	query := fmt.Sprintf("SELECT payload FROM %s WHERE slot_key = %s", SlotTable, s.placeholder(1))

	var data []byte
	if err := q.QueryRowContext(ctx, query, s.key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotEmpty
		}
		return nil, NewStoreError("slot", "read", "query failed", s.mapError(err))
	}
	return data, nil
}

// Write implements Slot. The row is replaced in a single transaction.
func (s *SQLSlot) Write(ctx context.Context, data []byte) error {
	query := s.upsertQuery()
	return RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, s.key, data, s.now()); err != nil {
			return NewStoreError("slot", "write", "upsert failed", s.mapError(err))
		}
		return nil
	})
}

func (s *SQLSlot) upsertQuery() string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (slot_key, payload, updated_at) VALUES (%s, %s, %s) ",
		SlotTable, s.placeholder(1), s.placeholder(2), s.placeholder(3))
	b.WriteString("ON CONFLICT (slot_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at")
	return b.String()
}
