package shopping

import (
	"context"
	"errors"
	"sort"
	"testing"

	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planOf(days map[planner.Day]recipe.Recipe) planner.MealPlan {
	s := planner.NewState()
	for d, r := range days {
		s = planner.Assign(s, d, r)
	}
	return s.MealPlan
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestGenerate_Scenario(t *testing.T) {
	teriyaki := testutil.NewRecipe("52772", "Teriyaki Chicken", [2]string{"Chicken", "2 pcs"}, [2]string{"Salt", "1 tsp"})
	salmon := testutil.NewRecipe("52773", "Honey Salmon", [2]string{"Salt", "1 tsp"}, [2]string{"Pepper", "1 tsp"})
	source := testutil.NewFakeSource(teriyaki, salmon)

	gen := NewGenerator(source, nil)
	items, err := gen.Generate(context.Background(), planOf(map[planner.Day]recipe.Recipe{
		planner.Monday:    teriyaki,
		planner.Wednesday: salmon,
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"Chicken", "Salt", "Pepper"}, names(items))
	assert.ElementsMatch(t, []string{"52772", "52773"}, source.Calls())
	assert.Equal(t, "salt-1 tsp", items[1].Key)
}

func TestGenerate_EmptyPlan(t *testing.T) {
	source := testutil.NewFakeSource()
	gen := NewGenerator(source, nil)

	items, err := gen.Generate(context.Background(), planner.MealPlan{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, source.Calls(), "no recipe lookups for an empty plan")
}

func TestGenerate_SharedRecipeFetchedOnce(t *testing.T) {
	soup := testutil.NewRecipe("1", "Soup", [2]string{"Water", "1 l"})
	source := testutil.NewFakeSource(soup)
	gen := NewGenerator(source, nil)

	items, err := gen.Generate(context.Background(), planOf(map[planner.Day]recipe.Recipe{
		planner.Monday:    soup,
		planner.Wednesday: soup,
		planner.Sunday:    soup,
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, source.Calls())
	assert.Len(t, items, 1)
}

func TestGenerate_OrderFollowsDays(t *testing.T) {
	a := testutil.NewRecipe("a", "A", [2]string{"Apple", "1"})
	b := testutil.NewRecipe("b", "B", [2]string{"Banana", "2"})
	c := testutil.NewRecipe("c", "C", [2]string{"Cherry", "3"})
	gen := NewGenerator(testutil.NewFakeSource(a, b, c), nil)

	items, err := gen.Generate(context.Background(), planOf(map[planner.Day]recipe.Recipe{
		planner.Sunday:   a,
		planner.Monday:   c,
		planner.Thursday: b,
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cherry", "Banana", "Apple"}, names(items))
}

func TestGenerate_FetchFailure(t *testing.T) {
	a := testutil.NewRecipe("1", "A", [2]string{"Apple", "1"})
	b := testutil.NewRecipe("2", "B", [2]string{"Banana", "2"})
	c := testutil.NewRecipe("3", "C", [2]string{"Cherry", "3"})
	plan := planOf(map[planner.Day]recipe.Recipe{
		planner.Monday:    a,
		planner.Tuesday:   b,
		planner.Wednesday: c,
	})

	t.Run("SecondOfThreeFails", func(t *testing.T) {
		source := testutil.NewFakeSource(a, b, c)
		boom := errors.New("connection reset")
		source.Errors["2"] = boom

		items, err := NewGenerator(source, nil).Generate(context.Background(), plan)
		assert.Nil(t, items, "no partial list")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.ErrorIs(t, err, boom)

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "2", fe.RecipeID)

		calls := source.Calls()
		sort.Strings(calls)
		assert.Equal(t, []string{"1", "2", "3"}, calls, "one lookup per distinct recipe")
	})

	t.Run("AbsentRecipe", func(t *testing.T) {
		source := testutil.NewFakeSource(a, c)

		items, err := NewGenerator(source, nil).Generate(context.Background(), plan)
		assert.Nil(t, items)
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.ErrorIs(t, err, recipe.ErrNotFound)
	})
}

func TestAggregate_Dedup(t *testing.T) {
	recipes := []recipe.Recipe{
		testutil.NewRecipe("1", "One", [2]string{"Salt", "1 tsp"}, [2]string{"salt", "1 TSP"}),
		testutil.NewRecipe("2", "Two", [2]string{"SALT", "1 tsp"}, [2]string{"Salt", "2 tsp"}),
	}

	items := Aggregate(recipes)
	require.Len(t, items, 2)
	assert.Equal(t, Item{Key: "salt-1 tsp", Name: "Salt", Measure: "1 tsp"}, items[0], "first occurrence keeps its casing")
	assert.Equal(t, Item{Key: "salt-2 tsp", Name: "Salt", Measure: "2 tsp"}, items[1])
}

func TestAggregate_NoNormalization(t *testing.T) {
	items := Aggregate([]recipe.Recipe{
		testutil.NewRecipe("1", "One", [2]string{"Tomato", "1"}, [2]string{"Tomatoes", "1"}, [2]string{"Tomato ", "1"}),
	})
	assert.Len(t, items, 3)
	assert.Empty(t, Aggregate(nil))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "salt-1 tsp", Key("Salt", "1 tsp"))
	assert.Equal(t, Key("STRASSE", "1"), Key("strasse", "1"))
	assert.Equal(t, "pepper-", Key("Pepper", ""))
}

func TestChecklist(t *testing.T) {
	items := []Item{
		{Key: "salt-1 tsp", Name: "Salt", Measure: "1 tsp"},
		{Key: "pepper-1 tsp", Name: "Pepper", Measure: "1 tsp"},
	}
	entries := Checklist(items, map[string]bool{"pepper-1 tsp": true, "stale-key": true})

	require.Len(t, entries, 2)
	assert.False(t, entries[0].Completed)
	assert.True(t, entries[1].Completed)
	assert.Equal(t, "Pepper", entries[1].Name)
	assert.Empty(t, Checklist(nil, nil))
}
