package formatter

import (
	"strings"
	"testing"

	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
	"meal-planner/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func usePlain(t *testing.T) {
	t.Helper()
	SetPlain(true)
	t.Cleanup(func() { SetPlain(false) })
}

func TestFormatPlan(t *testing.T) {
	usePlain(t)
	s := planner.Assign(planner.NewState(), planner.Tuesday, testutil.NewRecipe("52772", "Teriyaki Chicken"))

	out := FormatPlan(s)
	assert.Contains(t, out, "MEAL PLAN")

	lines := strings.Split(out, "\n")
	var tue, wed string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "Tue"):
			tue = l
		case strings.HasPrefix(l, "Wed"):
			wed = l
		}
	}
	assert.Contains(t, tue, "Teriyaki Chicken")
	assert.Contains(t, tue, "52772")
	assert.Contains(t, wed, "nothing planned")
	assert.Less(t, strings.Index(out, "Mon"), strings.Index(out, "Sun"))
}

func TestFormatShoppingList(t *testing.T) {
	usePlain(t)

	t.Run("Empty", func(t *testing.T) {
		assert.Contains(t, FormatShoppingList(nil), "Nothing to buy")
	})

	t.Run("Entries", func(t *testing.T) {
		out := FormatShoppingList([]shopping.Entry{
			{Item: shopping.Item{Key: "salt-1 tsp", Name: "Salt", Measure: "1 tsp"}, Completed: true},
			{Item: shopping.Item{Key: "pepper-", Name: "Pepper"}},
		})
		assert.Contains(t, out, "[x] Salt 1 tsp  (salt-1 tsp)")
		assert.Contains(t, out, "[ ] Pepper  (pepper-)")
		assert.Contains(t, out, "1 of 2 items done")
	})
}

func TestFormatRecipes(t *testing.T) {
	usePlain(t)
	assert.Contains(t, FormatRecipes(nil), "No recipes found")

	out := FormatRecipes([]recipe.Recipe{testutil.NewRecipe("1", "Soup", [2]string{"Water", "1 l"})})
	assert.Contains(t, out, "Soup")
	assert.Contains(t, out, "Test")
}

func TestFormatCategories(t *testing.T) {
	usePlain(t)
	out := FormatCategories([]recipe.Category{{ID: "1", Name: "Beef"}})
	assert.Contains(t, out, "• Beef")
}

func TestFormatUsage(t *testing.T) {
	usePlain(t)
	out := FormatUsage([]metrics.DailyUsage{{Date: "2026-10-17", Calls: 12, Failures: 2, AvgLatencyMS: 180}})
	assert.Contains(t, out, "2026-10-17")
	assert.Contains(t, out, "180 ms")
}

func TestRenderTable_Aligns(t *testing.T) {
	usePlain(t)
	out := RenderTable([]string{"A", "B"}, [][]string{{"long value", "x"}, {"s", "y"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[2], "x"), strings.Index(lines[3], "y"))
	assert.Empty(t, RenderTable(nil, nil))
}
