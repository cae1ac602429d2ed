package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// ErrRecipeNotFound is returned when assigning an id the catalog does not know.
var ErrRecipeNotFound = recipe.ErrNotFound

// App holds the application's dependencies and is the single entry point
// used by the CLI, the HTTP API and the Telegram bot.
type App struct {
	store        *planner.Store
	source       recipe.Source
	generator    *shopping.Generator
	metricsStore *metrics.Store
	cfg          *config.Config
	logger       *slog.Logger

	db *database.DB
}

// NewApp creates and initializes a new App instance. metricsStore may be nil.
func NewApp(
	store *planner.Store,
	source recipe.Source,
	metricsStore *metrics.Store,
	cfg *config.Config,
	logger *slog.Logger,
) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		store:        store,
		source:       source,
		generator:    shopping.NewGenerator(source, logger),
		metricsStore: metricsStore,
		cfg:          cfg,
		logger:       logger,
	}
}

// Plan returns a snapshot of the current plan state.
func (a *App) Plan() planner.State {
	return a.store.Snapshot()
}

// AssignRecipe resolves recipeID through the catalog and plans it on day.
func (a *App) AssignRecipe(ctx context.Context, day planner.Day, recipeID string) (recipe.Recipe, error) {
	if !day.Valid() {
		return recipe.Recipe{}, fmt.Errorf("%w: %d", planner.ErrInvalidDay, int(day))
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return recipe.Recipe{}, planner.ErrInvalidRecipe
	}

	r, err := a.source.FetchByID(ctx, recipeID)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to fetch recipe %s: %w", recipeID, err)
	}
	if r == nil {
		return recipe.Recipe{}, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}

	if err := a.store.Assign(ctx, day, *r); err != nil {
		return recipe.Recipe{}, err
	}
	a.logger.Info("recipe assigned", "day", day.String(), "recipe_id", r.ID, "recipe", r.Name)
	return *r, nil
}

// Unassign clears day.
func (a *App) Unassign(ctx context.Context, day planner.Day) error {
	if err := a.store.Unassign(ctx, day); err != nil {
		return err
	}
	a.logger.Info("day cleared", "day", day.String())
	return nil
}

// ShoppingList derives the list for the current plan and joins it with the
// stored completion flags.
func (a *App) ShoppingList(ctx context.Context) ([]shopping.Entry, error) {
	state := a.store.Snapshot()
	items, err := a.generator.Generate(ctx, state.MealPlan)
	if err != nil {
		return nil, err
	}
	return shopping.Checklist(items, state.Completed), nil
}

// Toggle flips the completion flag of an item and returns the new value.
func (a *App) Toggle(ctx context.Context, key string) bool {
	return a.store.ToggleCompletion(ctx, key)
}

// ClearCompleted drops every completed flag and returns how many were dropped.
func (a *App) ClearCompleted(ctx context.Context) int {
	return a.store.ClearCompleted(ctx)
}

// Search queries the catalog by name and/or category.
func (a *App) Search(ctx context.Context, query, category string) ([]recipe.Recipe, error) {
	recipes, err := a.source.Search(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

// Categories lists the catalog categories.
func (a *App) Categories(ctx context.Context) ([]recipe.Category, error) {
	cats, err := a.source.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return cats, nil
}

// Subscribe registers an observer for plan state changes.
func (a *App) Subscribe(fn planner.Observer) func() {
	return a.store.Subscribe(fn)
}

// Metrics returns the metrics store, or nil when metrics are not recorded.
func (a *App) Metrics() *metrics.Store {
	return a.metricsStore
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Health returns process and data directory health.
func (a *App) Health() metrics.SysHealth {
	path := ""
	if a.cfg != nil {
		path = a.cfg.DatabasePath
	}
	return metrics.GetSysHealth(path)
}

// Close releases the database, if the app owns one.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
