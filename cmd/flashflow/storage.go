package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/phrazzld/flashflow/internal/config"
	"github.com/phrazzld/flashflow/internal/platform/badger"
	"github.com/phrazzld/flashflow/internal/platform/file"
	"github.com/phrazzld/flashflow/internal/platform/postgres"
	"github.com/phrazzld/flashflow/internal/platform/redis"
	"github.com/phrazzld/flashflow/internal/platform/sqlite"
	"github.com/phrazzld/flashflow/internal/store"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSlot returns the durable slot selected by cfg and a closer that
// releases it.
func openSlot(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.Slot, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemorySlot(), nopCloser{}, nil

	case config.BackendFile:
		slot, err := file.NewSlot(cfg.Path, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		return slot, nopCloser{}, nil

	case config.BackendBadger:
		bcfg := badger.DefaultConfig(cfg.Path)
		bcfg.Logger = logger
		slot, err := badger.NewSlot(bcfg, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot, nil

	case config.BackendSQLite:
		slot, err := sqlite.NewSlot(ctx, filepath.Join(cfg.Path, sqlite.FileName), cfg.Key, logger)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot, nil

	case config.BackendPostgres:
		slot, err := postgres.NewSlot(ctx, cfg.URL, cfg.Key, logger)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot, nil

	case config.BackendRedis:
		slot, err := redis.NewSlot(ctx, cfg.URL, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
