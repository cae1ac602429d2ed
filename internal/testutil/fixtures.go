package testutil

import (
	"context"
	"sync"

	"meal-planner/internal/recipe"
)

// NewRecipe builds a recipe with the given id and (name, measure) pairs.
func NewRecipe(id, name string, pairs ...[2]string) recipe.Recipe {
	ingredients := make([]recipe.Ingredient, 0, len(pairs))
	for _, p := range pairs {
		ingredients = append(ingredients, recipe.Ingredient{Name: p[0], Measure: p[1]})
	}
	return recipe.Recipe{
		ID:          id,
		Name:        name,
		Category:    "Test",
		Ingredients: ingredients,
	}
}

// FakeSource is an in-memory recipe.Source that records every lookup.
type FakeSource struct {
	mu           sync.Mutex
	Recipes      map[string]recipe.Recipe
	Errors       map[string]error
	CategoryList []recipe.Category
	calls        []string
}

// NewFakeSource creates a FakeSource serving the given recipes.
func NewFakeSource(recipes ...recipe.Recipe) *FakeSource {
	f := &FakeSource{
		Recipes: make(map[string]recipe.Recipe),
		Errors:  make(map[string]error),
	}
	for _, r := range recipes {
		f.Recipes[r.ID] = r
	}
	return f
}

func (f *FakeSource) FetchByID(_ context.Context, id string) (*recipe.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if err, ok := f.Errors[id]; ok {
		return nil, err
	}
	r, ok := f.Recipes[id]
	if !ok {
		return nil, nil
	}
	c := r.Clone()
	return &c, nil
}

func (f *FakeSource) Search(_ context.Context, query, category string) ([]recipe.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recipe.Recipe
	for _, r := range f.Recipes {
		if category != "" && r.Category != category {
			continue
		}
		if query != "" && r.Name != query {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (f *FakeSource) Categories(context.Context) ([]recipe.Category, error) {
	return f.CategoryList, nil
}

// Calls returns the recipe ids looked up so far, in call order.
func (f *FakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}
