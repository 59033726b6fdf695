package recipe

import "strings"

// Metadata is the flattened, filterable view of a recipe that travels with
// search results. Numeric fields are pointers: a nil value means the stored
// record is missing that field, which range filters treat as a failure
// rather than a zero.
type Metadata struct {
	Title            string     `json:"title"`
	Difficulty       Difficulty `json:"difficulty"`
	PrepTimeMinutes  *int       `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes  *int       `json:"cook_time_minutes,omitempty"`
	Servings         *int       `json:"servings,omitempty"`
	IngredientCount  int        `json:"ingredient_count"`
	InstructionCount int        `json:"instruction_count"`
	Ingredients      []string   `json:"ingredients,omitempty"`
}

// TotalTimeMinutes returns prep plus cook time, or nil if either is missing.
func (m Metadata) TotalTimeMinutes() *int {
	if m.PrepTimeMinutes == nil || m.CookTimeMinutes == nil {
		return nil
	}
	total := *m.PrepTimeMinutes + *m.CookTimeMinutes
	return &total
}

// DietaryText returns the lower-cased title and ingredient text used for
// dietary keyword matching.
func (m Metadata) DietaryText() string {
	parts := make([]string, 0, len(m.Ingredients)+1)
	parts = append(parts, strings.ToLower(m.Title))
	for _, ing := range m.Ingredients {
		parts = append(parts, strings.ToLower(ing))
	}
	return strings.Join(parts, " ")
}
