package scheduler

import "strings"

// Meal is one of the fixed daily reservations.
type Meal struct {
	Name  string
	Start Clock
	End   Clock
}

var meals = [...]Meal{
	{Name: "Breakfast", Start: At(8, 0), End: At(9, 0)},
	{Name: "Lunch", Start: At(13, 0), End: At(14, 0)},
	{Name: "Dinner", Start: At(19, 0), End: At(20, 0)},
}

// Meals returns the meal catalogue in start order.
func Meals() []Meal {
	out := make([]Meal, len(meals))
	copy(out, meals[:])
	return out
}

// LookupMeal finds a meal by its exact canonical name.
func LookupMeal(name string) (Meal, bool) {
	for _, m := range meals {
		if m.Name == name {
			return m, true
		}
	}
	return Meal{}, false
}

// IsMealName reports whether name is one of the canonical meal names.
func IsMealName(name string) bool {
	_, ok := LookupMeal(name)
	return ok
}

// ParseMealList splits a comma separated list such as "Breakfast,Lunch".
// Surrounding whitespace is trimmed; names are otherwise passed through so
// that unknown ones are ignored by the scheduler, not here.
func ParseMealList(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// Interval returns the meal's fixed "HH:MM-HH:MM" string.
func (m Meal) Interval() string {
	return Interval(m.Start, m.End)
}

// collides reports whether a block spanning [cursor, end) would start inside
// the meal window or run into it.
func (m Meal) collides(cursor, end Clock) bool {
	if cursor >= m.End {
		return false
	}
	return cursor >= m.Start || end > m.Start
}
