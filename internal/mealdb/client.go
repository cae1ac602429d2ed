package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meal-planner/internal/config"
	"meal-planner/internal/recipe"

	"golang.org/x/sync/errgroup"
)

// maxIngredients is the number of strIngredientN/strMeasureN pairs a meal carries.
const maxIngredients = 20

// CallEvent describes one completed request to the catalog API.
type CallEvent struct {
	Operation  string
	Target     string
	Latency    time.Duration
	StatusCode int
	Err        error
}

// Observer is notified after every API call.
type Observer interface {
	OnCallComplete(ev CallEvent)
}

// NoopObserver discards events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// Client is a recipe.Source backed by the TheMealDB JSON API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	observer   Observer
}

var _ recipe.Source = (*Client)(nil)

// NewClient creates a new TheMealDB client.
func NewClient(cfg *config.Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	baseURL := strings.TrimRight(cfg.MealDBURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultMealDBURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.MealDBTimeout},
		baseURL:    baseURL,
		observer:   observer,
	}
}

type mealsResponse struct {
	Meals []map[string]any `json:"meals"`
}

type filterResponse struct {
	Meals []struct {
		ID string `json:"idMeal"`
	} `json:"meals"`
}

type categoriesResponse struct {
	Categories []struct {
		ID   string `json:"idCategory"`
		Name string `json:"strCategory"`
	} `json:"categories"`
}

// FetchByID looks a recipe up by id. It returns (nil, nil) when the catalog
// does not know the id.
func (c *Client) FetchByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	var resp mealsResponse
	if err := c.get(ctx, "lookup", "lookup.php", url.Values{"i": {id}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Meals) == 0 || resp.Meals[0] == nil {
		return nil, nil
	}
	r := mapMeal(resp.Meals[0])
	return &r, nil
}

// Search finds recipes by name. With a blank query it lists the category and
// resolves every hit; any failed lookup fails the whole search. Results are
// restricted to category when one is given.
func (c *Client) Search(ctx context.Context, query, category string) ([]recipe.Recipe, error) {
	query = strings.TrimSpace(query)
	category = strings.TrimSpace(category)

	var recipes []recipe.Recipe
	switch {
	case query != "":
		var resp mealsResponse
		if err := c.get(ctx, "search", "search.php", url.Values{"s": {query}}, &resp); err != nil {
			return nil, err
		}
		for _, m := range resp.Meals {
			if m != nil {
				recipes = append(recipes, mapMeal(m))
			}
		}
	case category != "":
		var err error
		recipes, err = c.byCategory(ctx, category)
		if err != nil {
			return nil, err
		}
	default:
		return []recipe.Recipe{}, nil
	}

	if category == "" {
		return recipes, nil
	}
	filtered := make([]recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (c *Client) byCategory(ctx context.Context, category string) ([]recipe.Recipe, error) {
	var resp filterResponse
	if err := c.get(ctx, "filter", "filter.php", url.Values{"c": {category}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Meals) == 0 {
		return []recipe.Recipe{}, nil
	}

	details := make([]*recipe.Recipe, len(resp.Meals))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, m := range resp.Meals {
		eg.Go(func() error {
			r, err := c.FetchByID(egCtx, m.ID)
			if err != nil {
				return fmt.Errorf("failed to load recipe %s for category %s: %w", m.ID, category, err)
			}
			details[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(details))
	for _, r := range details {
		if r != nil {
			recipes = append(recipes, *r)
		}
	}
	return recipes, nil
}

// Categories lists the catalog categories.
func (c *Client) Categories(ctx context.Context) ([]recipe.Category, error) {
	var resp categoriesResponse
	if err := c.get(ctx, "categories", "categories.php", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]recipe.Category, 0, len(resp.Categories))
	for _, cat := range resp.Categories {
		out = append(out, recipe.Category{ID: cat.ID, Name: cat.Name})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) (err error) {
	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	start := time.Now()
	status := 0
	defer func() {
		c.observer.OnCallComplete(CallEvent{
			Operation:  op,
			Target:     path,
			Latency:    time.Since(start),
			StatusCode: status,
			Err:        err,
		})
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mealdb %s error: status %d", op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func mapMeal(m map[string]any) recipe.Recipe {
	r := recipe.Recipe{
		ID:           str(m["idMeal"]),
		Name:         str(m["strMeal"]),
		Category:     str(m["strCategory"]),
		Area:         str(m["strArea"]),
		Instructions: str(m["strInstructions"]),
		Thumbnail:    str(m["strMealThumb"]),
		Ingredients:  make([]recipe.Ingredient, 0, maxIngredients),
	}
	for i := 1; i <= maxIngredients; i++ {
		n := strconv.Itoa(i)
		name := strings.TrimSpace(str(m["strIngredient"+n]))
		if name == "" {
			continue
		}
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{
			Name:    name,
			Measure: strings.TrimSpace(str(m["strMeasure"+n])),
		})
	}
	return r
}

// str reads a loosely typed JSON value. The API sends nulls and, for ids,
// occasionally numbers.
func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
