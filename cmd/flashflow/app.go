package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phrazzld/flashflow/internal/config"
	"github.com/phrazzld/flashflow/internal/events"
	"github.com/phrazzld/flashflow/internal/platform/logger"
	"github.com/phrazzld/flashflow/internal/redact"
	"github.com/phrazzld/flashflow/internal/service"
	"github.com/phrazzld/flashflow/internal/store"
)

const screenLogFile = "flashflow.log"

// application holds the shared dependencies of one command invocation and
// releases them in cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger

	slotCloser io.Closer
	logCloser  io.Closer

	store   *store.DeckStore
	emitter *events.InMemoryEventEmitter
	decks   *service.DeckService
}

// newApplication loads configuration, sets up logging, opens the configured
// slot and loads the deck collection. The store is loaded before anything
// can mutate it. A fullScreen application never logs to stderr.
func newApplication(ctx context.Context, configFile string, fullScreen bool) (*application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := cfg.Log
	if fullScreen {
		logCfg = screenLogConfig(logCfg)
	}
	log, logCloser, err := logger.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	app := &application{config: cfg, logger: log, logCloser: logCloser}

	slot, slotCloser, err := openSlot(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("failed to open storage",
			slog.String("backend", cfg.Storage.Backend),
			slog.String("url", redact.URL(cfg.Storage.URL)),
			slog.String("error", redact.Error(err)))
		app.cleanup()
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, redact.Wrap(err))
	}
	app.slotCloser = slotCloser

	app.store = store.NewDeckStore(slot, log)
	count := app.store.Load(ctx)

	app.emitter = events.NewInMemoryEventEmitter(log)
	app.decks, err = service.NewDeckService(app.store, app.emitter, log)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	log.Debug("application initialized",
		slog.String("backend", cfg.Storage.Backend),
		slog.Int("deck_count", count))
	return app, nil
}

// screenLogConfig sends logs to a file under the user cache directory when
// none is configured.
func screenLogConfig(cfg config.LogConfig) config.LogConfig {
	if cfg.File != "" {
		return cfg
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	cfg.File = filepath.Join(dir, "flashflow", screenLogFile)
	return cfg
}

// cleanup releases storage and the log file.
func (app *application) cleanup() {
	if app.slotCloser != nil {
		if err := app.slotCloser.Close(); err != nil {
			app.logger.Error("error closing storage", slog.String("error", err.Error()))
		}
	}
	if app.logCloser != nil {
		_ = app.logCloser.Close()
	}
}
