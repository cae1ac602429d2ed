package shopping

import (
	"golang.org/x/text/cases"
)

// Item is one line of the derived shopping list.
// Key identifies the item across regenerations and is what completion flags
// are stored under.
type Item struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Entry is an Item together with its completion flag.
type Entry struct {
	Item
	Completed bool `json:"completed"`
}

// Key derives the item key from an ingredient name and measure.
// Both parts are case folded, so "Salt"/"1 TSP" and "salt"/"1 tsp" collide.
func Key(name, measure string) string {
	fold := cases.Fold()
	return fold.String(name) + "-" + fold.String(measure)
}

// Checklist joins items with their completion flags. Flags for keys that no
// longer appear in items are ignored.
func Checklist(items []Item, completed map[string]bool) []Entry {
	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{Item: it, Completed: completed[it.Key]}
	}
	return entries
}
