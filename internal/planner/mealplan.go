package planner

import (
	"errors"

	"meal-planner/internal/recipe"
)

var (
	// ErrInvalidDay is returned for a day outside Mon..Sun.
	ErrInvalidDay = errors.New("invalid day")
	// ErrInvalidRecipe is returned when assigning a recipe without an identifier.
	ErrInvalidRecipe = errors.New("recipe has no identifier")
)

// MealPlan maps every day of the week to at most one recipe.
// It is a fixed-size array so every day is always present; a nil slot means
// nothing is planned.
type MealPlan [DaysInWeek]*recipe.Recipe

// Get returns the recipe planned for d, or nil.
func (p MealPlan) Get(d Day) *recipe.Recipe {
	if !d.Valid() {
		return nil
	}
	return p[d]
}

// RecipeIDs returns the distinct identifiers of planned recipes, ordered by
// the first day each one appears on.
func (p MealPlan) RecipeIDs() []string {
	seen := make(map[string]struct{}, DaysInWeek)
	ids := make([]string, 0, DaysInWeek)
	for _, r := range p {
		if r == nil {
			continue
		}
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		ids = append(ids, r.ID)
	}
	return ids
}

// IsEmpty reports whether no day has a recipe.
func (p MealPlan) IsEmpty() bool {
	for _, r := range p {
		if r != nil {
			return false
		}
	}
	return true
}

func (p MealPlan) clone() MealPlan {
	var c MealPlan
	for i, r := range p {
		if r != nil {
			rc := r.Clone()
			c[i] = &rc
		}
	}
	return c
}

// State is the persisted unit: the weekly plan plus completion flags for
// shopping items, keyed by item key. Flags may reference items that no longer
// appear in any generated list.
type State struct {
	MealPlan  MealPlan
	Completed map[string]bool
}

// NewState returns the empty default state.
func NewState() State {
	return State{Completed: make(map[string]bool)}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := State{
		MealPlan:  s.MealPlan.clone(),
		Completed: make(map[string]bool, len(s.Completed)),
	}
	for k, v := range s.Completed {
		c.Completed[k] = v
	}
	return c
}

// IsCompleted reports the completion flag for key; unset keys are not completed.
func (s State) IsCompleted(key string) bool {
	return s.Completed[key]
}

// HasCompleted reports whether any flag is set to true.
func (s State) HasCompleted() bool {
	for _, v := range s.Completed {
		if v {
			return true
		}
	}
	return false
}

// The transitions below are pure: they never modify their input and always
// return a new State. Recipe slots are shared between input and output since
// recipes are immutable.

// Assign plans r on day d, replacing whatever was there.
func Assign(s State, d Day, r recipe.Recipe) State {
	if !d.Valid() {
		return s
	}
	next := State{MealPlan: s.MealPlan, Completed: s.Completed}
	rc := r.Clone()
	next.MealPlan[d] = &rc
	return next
}

// Unassign clears day d. Clearing an empty day is a no-op.
func Unassign(s State, d Day) State {
	if !d.Valid() {
		return s
	}
	next := State{MealPlan: s.MealPlan, Completed: s.Completed}
	next.MealPlan[d] = nil
	return next
}

// ToggleCompletion flips the flag for key, treating an unset key as false.
func ToggleCompletion(s State, key string) State {
	completed := copyFlags(s.Completed, len(s.Completed)+1)
	completed[key] = !s.Completed[key]
	return State{MealPlan: s.MealPlan, Completed: completed}
}

// ClearCompleted drops every flag set to true and keeps the false ones.
func ClearCompleted(s State) State {
	completed := make(map[string]bool, len(s.Completed))
	for k, v := range s.Completed {
		if !v {
			completed[k] = v
		}
	}
	return State{MealPlan: s.MealPlan, Completed: completed}
}

func copyFlags(src map[string]bool, capacity int) map[string]bool {
	dst := make(map[string]bool, capacity)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
