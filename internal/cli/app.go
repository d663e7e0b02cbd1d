// Package cli implements the operator commands. Every command opens the
// store and cache, runs, and tears down with a final flush so no pending
// debounced write is ever dropped.
package cli

import (
	"context"
	"log/slog"

	"shataku/internal/cache"
	"shataku/internal/config"
	"shataku/internal/core"
	"shataku/internal/legacy"
	"shataku/internal/services"
	"shataku/internal/storage"
)

type app struct {
	cfg     *config.Config
	store   *storage.Store
	cache   *cache.Cache
	closing *services.ClosingService
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if err := legacy.Migrate(ctx, store, cfg.LegacyPath, cfg.LegacySnapshotsPath); err != nil {
		store.Close()
		return nil, err
	}

	c, err := cache.Open(ctx, store, cache.Options{
		FlushWindow: cfg.FlushWindow,
		Fallback: func(ctx context.Context) (core.Dataset, bool) {
			return legacy.LoadDataset(ctx, cfg.LegacyPath)
		},
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		store:   store,
		cache:   c,
		closing: services.NewClosingService(c, store),
	}, nil
}

func (a *app) shutdown(ctx context.Context) {
	if err := a.cache.Close(ctx); err != nil {
		slog.ErrorContext(ctx, "Final flush failed", "error", err)
	}
	if err := a.store.Close(); err != nil {
		slog.ErrorContext(ctx, "Store close failed", "error", err)
	}
}
