package recipe

import (
	"context"
	"errors"
)

// ErrNotFound is reported when a recipe identifier is unknown to the catalog.
var ErrNotFound = errors.New("recipe not found")

// Ingredient is a single line of a recipe's ingredient list.
// Measure is free-form text ("2 tbsp", "to taste") and is never parsed.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Recipe is a full recipe as returned by the catalog.
// Values are treated as immutable once constructed; use Clone before handing
// a recipe to code that keeps it.
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Area         string       `json:"area"`
	Instructions string       `json:"instructions"`
	Thumbnail    string       `json:"thumbnail"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	c := r
	if r.Ingredients != nil {
		c.Ingredients = make([]Ingredient, len(r.Ingredients))
		copy(c.Ingredients, r.Ingredients)
	}
	return c
}

// Category is a catalog category used for browsing.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Fetcher resolves a recipe by its identifier.
// Implementations return (nil, nil) when the identifier is unknown and a
// non-nil error on transport or decoding failures.
type Fetcher interface {
	FetchByID(ctx context.Context, id string) (*Recipe, error)
}

// Source is the full catalog capability: lookup plus search and browse.
type Source interface {
	Fetcher
	Search(ctx context.Context, query, category string) ([]Recipe, error)
	Categories(ctx context.Context) ([]Category, error)
}
