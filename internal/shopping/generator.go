package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"

	"golang.org/x/sync/errgroup"
)

// ErrFetchFailed matches every error returned by Generate when a planned
// recipe could not be resolved.
var ErrFetchFailed = errors.New("failed to fetch planned recipe")

// FetchError reports which recipe broke list generation.
type FetchError struct {
	RecipeID string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch recipe %s: %v", e.RecipeID, e.Err)
}

// Unwrap exposes both ErrFetchFailed and the underlying cause to errors.Is.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}

// Generator derives shopping lists from meal plans.
type Generator struct {
	source recipe.Fetcher
	logger *slog.Logger
}

// NewGenerator creates a Generator that resolves recipes through source.
func NewGenerator(source recipe.Fetcher, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{source: source, logger: logger}
}

// Generate fetches every distinct planned recipe once and aggregates their
// ingredients. Either every recipe resolves and the full list is returned, or
// the call fails; a partial list is never produced.
func (g *Generator) Generate(ctx context.Context, plan planner.MealPlan) ([]Item, error) {
	ids := plan.RecipeIDs()
	if len(ids) == 0 {
		return []Item{}, nil
	}

	start := time.Now()
	recipes := make([]recipe.Recipe, len(ids))

	var eg errgroup.Group
	for i, id := range ids {
		eg.Go(func() error {
			r, err := g.source.FetchByID(ctx, id)
			if err != nil {
				return &FetchError{RecipeID: id, Err: err}
			}
			if r == nil {
				return &FetchError{RecipeID: id, Err: recipe.ErrNotFound}
			}
			recipes[i] = *r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		g.logger.Warn("shopping list generation failed", "recipes", len(ids), "error", err)
		return nil, err
	}

	items := Aggregate(recipes)
	g.logger.Debug("shopping list generated",
		"recipes", len(ids),
		"items", len(items),
		"duration", time.Since(start),
	)
	return items, nil
}

// Aggregate flattens the ingredients of recipes in order and keeps the first
// occurrence of every key.
func Aggregate(recipes []recipe.Recipe) []Item {
	seen := make(map[string]struct{})
	items := make([]Item, 0)
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			key := Key(ing.Name, ing.Measure)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			items = append(items, Item{Key: key, Name: ing.Name, Measure: ing.Measure})
		}
	}
	return items
}
