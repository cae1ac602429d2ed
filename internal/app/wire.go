package app

import (
	"context"
	"fmt"
	"log/slog"

	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/mealdb"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/storage"
)

// Build opens the database and wires the catalog client, recipe cache, plan
// store and metrics from cfg. The caller owns the returned App and must Close it.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	metricsStore := metrics.NewStore(db.SQL, logger)
	client := mealdb.NewClient(cfg, metricsStore)
	source := recipe.NewCachedSource(client, recipe.NewRepository(db.SQL), cfg.RecipeCacheTTL, logger)

	persister, err := newPersister(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	store := planner.NewStore(ctx, persister, logger)

	a := NewApp(store, source, metricsStore, cfg, logger)
	a.db = db

	logger.Info("application ready",
		"database", cfg.DatabasePath,
		"state_backend", cfg.StateBackend,
		"catalog", cfg.MealDBURL,
		"recipe_cache_ttl", cfg.RecipeCacheTTL,
	)
	return a, nil
}

func newPersister(cfg *config.Config, db *database.DB) (planner.Persister, error) {
	switch cfg.StateBackend {
	case config.BackendFile:
		files, err := storage.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize state directory: %w", err)
		}
		return planner.NewRecordPersister(files), nil
	case config.BackendSQLite, "":
		return planner.NewRecordPersister(planner.NewStateRepository(db.SQL)), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}
