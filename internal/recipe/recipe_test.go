package recipe_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"meal-planner/internal/recipe"
	"meal-planner/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeClone(t *testing.T) {
	orig := testutil.NewRecipe("1", "Soup", [2]string{"Salt", "1 tsp"})
	clone := orig.Clone()
	clone.Ingredients[0].Name = "Pepper"

	assert.Equal(t, "Salt", orig.Ingredients[0].Name, "clone must not share the ingredient slice")
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := recipe.NewRepository(testutil.NewTestDB(t))
	rec := testutil.NewRecipe("52772", "Teriyaki Chicken", [2]string{"Chicken", "2 pcs"})
	fetchedAt := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("Get-Missing", func(t *testing.T) {
		got, err := repo.Get(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Save-And-Get", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, rec, fetchedAt))

		got, err := repo.Get(ctx, "52772")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec, got.Recipe)
		assert.True(t, fetchedAt.Equal(got.FetchedAt))
	})

	t.Run("Save-Overwrites", func(t *testing.T) {
		updated := rec
		updated.Name = "Teriyaki Chicken Casserole"
		require.NoError(t, repo.Save(ctx, updated, fetchedAt.Add(time.Hour)))

		got, err := repo.Get(ctx, "52772")
		require.NoError(t, err)
		assert.Equal(t, "Teriyaki Chicken Casserole", got.Recipe.Name)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "52772"))
		got, err := repo.Get(ctx, "52772")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()

	t.Run("ServesFreshEntriesFromCache", func(t *testing.T) {
		upstream := testutil.NewFakeSource(testutil.NewRecipe("1", "Soup", [2]string{"Salt", "1 tsp"}))
		cached := recipe.NewCachedSource(upstream, recipe.NewRepository(testutil.NewTestDB(t)), time.Hour, nil)

		first, err := cached.FetchByID(ctx, "1")
		require.NoError(t, err)
		second, err := cached.FetchByID(ctx, "1")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, []string{"1"}, upstream.Calls())
	})

	t.Run("ZeroTTLAlwaysFetches", func(t *testing.T) {
		upstream := testutil.NewFakeSource(testutil.NewRecipe("1", "Soup"))
		cached := recipe.NewCachedSource(upstream, recipe.NewRepository(testutil.NewTestDB(t)), 0, nil)

		_, err := cached.FetchByID(ctx, "1")
		require.NoError(t, err)
		_, err = cached.FetchByID(ctx, "1")
		require.NoError(t, err)

		assert.Len(t, upstream.Calls(), 2)
	})

	t.Run("AbsentIsNotCached", func(t *testing.T) {
		upstream := testutil.NewFakeSource()
		repo := recipe.NewRepository(testutil.NewTestDB(t))
		cached := recipe.NewCachedSource(upstream, repo, time.Hour, nil)

		got, err := cached.FetchByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("UpstreamErrorPropagates", func(t *testing.T) {
		upstream := testutil.NewFakeSource()
		upstream.Errors["1"] = errors.New("boom")
		cached := recipe.NewCachedSource(upstream, recipe.NewRepository(testutil.NewTestDB(t)), time.Hour, nil)

		_, err := cached.FetchByID(ctx, "1")
		assert.EqualError(t, err, "boom")
	})

	t.Run("SearchWarmsCache", func(t *testing.T) {
		upstream := testutil.NewFakeSource(testutil.NewRecipe("7", "Pie"))
		cached := recipe.NewCachedSource(upstream, recipe.NewRepository(testutil.NewTestDB(t)), time.Hour, nil)

		results, err := cached.Search(ctx, "Pie", "")
		require.NoError(t, err)
		require.Len(t, results, 1)

		got, err := cached.FetchByID(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, "Pie", got.Name)
		assert.Empty(t, upstream.Calls(), "lookup should be served by the cache")
	})
}
