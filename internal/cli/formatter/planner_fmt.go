package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// FormatPlan renders the week, one row per day.
func FormatPlan(state planner.State) string {
	rows := make([][]string, 0, planner.DaysInWeek)
	for _, d := range planner.Week() {
		r := state.MealPlan.Get(d)
		if r == nil {
			rows = append(rows, []string{d.String(), Dim("nothing planned"), ""})
			continue
		}
		rows = append(rows, []string{d.String(), r.Name, Dim(r.ID)})
	}
	return Header("Meal plan") + "\n" + RenderTable([]string{"DAY", "RECIPE", "ID"}, rows)
}

// FormatShoppingList renders the checklist. Keys are shown so items can be
// toggled from the command line.
func FormatShoppingList(entries []shopping.Entry) string {
	var b strings.Builder
	b.WriteString(Header("Shopping list"))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString(Dim("Nothing to buy. Assign some recipes first."))
		b.WriteString("\n")
		return b.String()
	}

	done := 0
	for _, e := range entries {
		box := "[ ]"
		name := e.Name
		if e.Completed {
			box = render(StyleGreen, "[x]")
			name = Dim(name)
			done++
		}
		line := name
		if e.Measure != "" {
			line += " " + Dim(e.Measure)
		}
		fmt.Fprintf(&b, "%s %s  %s\n", box, line, Dim("("+e.Key+")"))
	}
	fmt.Fprintf(&b, "\n%s\n", Dim(fmt.Sprintf("%d of %d items done", done, len(entries))))
	return b.String()
}

// FormatRecipes renders search results.
func FormatRecipes(recipes []recipe.Recipe) string {
	if len(recipes) == 0 {
		return Dim("No recipes found.") + "\n"
	}
	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, []string{r.ID, r.Name, r.Category, r.Area, strconv.Itoa(len(r.Ingredients))})
	}
	return RenderTable([]string{"ID", "NAME", "CATEGORY", "AREA", "INGREDIENTS"}, rows)
}

// FormatCategories renders the category list.
func FormatCategories(cats []recipe.Category) string {
	if len(cats) == 0 {
		return Dim("No categories.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Header("Categories"))
	b.WriteString("\n")
	for _, c := range cats {
		fmt.Fprintf(&b, "• %s\n", c.Name)
	}
	return b.String()
}

// FormatUsage renders catalog API usage per day.
func FormatUsage(usage []metrics.DailyUsage) string {
	if len(usage) == 0 {
		return Dim("No API calls recorded.") + "\n"
	}
	rows := make([][]string, 0, len(usage))
	for _, u := range usage {
		failures := strconv.Itoa(u.Failures)
		if u.Failures > 0 {
			failures = render(StyleRed, failures)
		}
		rows = append(rows, []string{u.Date, strconv.Itoa(u.Calls), failures, fmt.Sprintf("%d ms", u.AvgLatencyMS)})
	}
	return RenderTable([]string{"DATE", "CALLS", "FAILED", "AVG LATENCY"}, rows)
}
