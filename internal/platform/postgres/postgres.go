package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"

	"github.com/phrazzld/flashflow/internal/store"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// pingTimeout bounds the connectivity check in Open.
const pingTimeout = 10 * time.Second

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open connects to the database at url and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty: check your configuration")
	}

	db, err := sql.Open(DriverName, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	startTime := time.Now()
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", MapError(err))
	}
	for _, r := range results {
		logger.Info("applied migration",
			slog.String("component", "postgres"),
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration))
	}
	logger.Debug("migrations complete",
		slog.Int("applied", len(results)),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}

// Slot is a store.Slot backed by PostgreSQL. Close releases the pool.
type Slot struct {
	*store.SQLSlot
	db *sql.DB
}

// NewSlot connects to url, migrates the schema and returns the slot named key.
func NewSlot(ctx context.Context, url, key string, logger *slog.Logger) (*Slot, error) {
	db, err := Open(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSlotFromDB(db, key), nil
}

// NewSlotFromDB wraps an already migrated database.
func NewSlotFromDB(db *sql.DB, key string) *Slot {
	return &Slot{
		SQLSlot: store.NewSQLSlot(db, key,
			store.WithPlaceholder(store.DollarPlaceholder),
			store.WithErrorMapper(MapError)),
		db: db,
	}
}

// DB returns the underlying connection pool.
func (s *Slot) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool.
func (s *Slot) Close() error {
	return s.db.Close()
}
