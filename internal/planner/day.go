package planner

import (
	"fmt"
	"strings"
)

// Day is a day of the planning week. Monday sorts first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of slots in a MealPlan.
const DaysInWeek = 7

var dayNames = [DaysInWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var longDayNames = [DaysInWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Week returns every day in display order.
func Week() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid reports whether d is one of the seven week days.
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the short name used in persisted state, e.g. "Mon".
func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// LongName returns the full English name, e.g. "Monday".
func (d Day) LongName() string {
	if !d.Valid() {
		return d.String()
	}
	return longDayNames[d]
}

// ParseDay accepts short ("Mon") or long ("monday") day names, case-insensitively.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for i := range dayNames {
		if strings.EqualFold(s, dayNames[i]) || strings.EqualFold(s, longDayNames[i]) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}
