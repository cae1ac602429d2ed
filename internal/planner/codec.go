package planner

import (
	"bytes"
	"encoding/json"
	"fmt"

	"meal-planner/internal/recipe"
)

// stateRecord is the on-disk layout of a State:
//
//	{"mealPlan": {"Mon": Recipe|null, ..., "Sun": Recipe|null},
//	 "shoppingListCompleted": {"<item key>": bool}}
type stateRecord struct {
	MealPlan  json.RawMessage `json:"mealPlan"`
	Completed json.RawMessage `json:"shoppingListCompleted"`
}

// EncodeState serializes s in the persisted layout, days in Mon..Sun order.
func EncodeState(s State) ([]byte, error) {
	plan, err := s.MealPlan.MarshalJSON()
	if err != nil {
		return nil, err
	}
	completed := s.Completed
	if completed == nil {
		completed = map[string]bool{}
	}
	flags, err := json.Marshal(completed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion flags: %w", err)
	}
	return json.Marshal(stateRecord{MealPlan: plan, Completed: flags})
}

// DecodeState restores a State from its persisted form. It never fails:
// unreadable input yields the default state, and each field (and each day of
// the plan) falls back to its default independently.
func DecodeState(data []byte) State {
	s := NewState()

	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return s
	}
	s.MealPlan = decodeMealPlan(rec.MealPlan)
	s.Completed = decodeFlags(rec.Completed)
	return s
}

// MarshalJSON writes the plan as an object keyed by short day name.
func (p MealPlan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range Week() {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", d.String())
		if p[d] == nil {
			buf.WriteString("null")
			continue
		}
		b, err := json.Marshal(p[d])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal recipe for %s: %w", d, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form. Unknown days are ignored and malformed
// day entries become empty slots; only a non-object input is an error.
func (p *MealPlan) UnmarshalJSON(data []byte) error {
	var days map[string]json.RawMessage
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("failed to unmarshal meal plan: %w", err)
	}
	*p = planFromDays(days)
	return nil
}

func decodeMealPlan(raw json.RawMessage) MealPlan {
	var days map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &days) != nil {
		return MealPlan{}
	}
	return planFromDays(days)
}

func planFromDays(days map[string]json.RawMessage) MealPlan {
	var plan MealPlan
	for _, d := range Week() {
		raw, ok := days[d.String()]
		if !ok {
			continue
		}
		var r *recipe.Recipe
		if err := json.Unmarshal(raw, &r); err != nil || r == nil || r.ID == "" {
			continue
		}
		plan[d] = r
	}
	return plan
}

func decodeFlags(raw json.RawMessage) map[string]bool {
	flags := make(map[string]bool)
	var entries map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return flags
	}
	for k, v := range entries {
		var b bool
		if json.Unmarshal(v, &b) == nil {
			flags[k] = b
		}
	}
	return flags
}
