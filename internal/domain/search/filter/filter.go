// Package filter implements metadata post-filtering for recipe search results.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/umami-labs/recipedex/internal/domain"
	"github.com/umami-labs/recipedex/internal/domain/recipe"
)

// MaxTimeBoundMinutes caps every time bound at one week.
const MaxTimeBoundMinutes = 10080

var supportedDietary = map[string]bool{
	"vegetarian":  true,
	"vegan":       true,
	"gluten-free": true,
	"dairy-free":  true,
	"low-carb":    true,
	"keto":        true,
	"paleo":       true,
	"diabetic":    true,
	"low-sodium":  true,
}

// meatKeywords disqualify a recipe from the vegetarian heuristic.
// veganExcluded additionally covers dairy and egg products.
var (
	meatKeywords  = []string{"meat", "chicken", "beef"}
	veganExcluded = []string{
		"meat", "chicken", "beef", "pork", "fish",
		"dairy", "milk", "cheese", "butter", "egg", "cream", "yogurt",
	}
)

// SupportedDietaryRestrictions returns the recognized dietary tags, sorted.
func SupportedDietaryRestrictions() []string {
	out := make([]string, 0, len(supportedDietary))
	for tag := range supportedDietary {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// RecipeFilter is an immutable set of metadata constraints. The zero value
// matches everything. All present constraints must hold for a candidate to
// pass, except dietary restrictions which match if any one of them holds.
type RecipeFilter struct {
	difficulty          recipe.Difficulty
	prepTimeMin         *int
	prepTimeMax         *int
	cookTimeMin         *int
	cookTimeMax         *int
	servingsMin         *int
	servingsMax         *int
	dietaryRestrictions []string
	maxTotalTime        *int
}

// New validates and creates a RecipeFilter. An empty difficulty or nil bound
// means "no constraint on this dimension". Dietary restriction tags are
// matched case-insensitively against the supported set.
func New(
	difficulty recipe.Difficulty,
	prepTimeMin, prepTimeMax, cookTimeMin, cookTimeMax, servingsMin, servingsMax *int,
	dietaryRestrictions []string,
	maxTotalTime *int,
) (RecipeFilter, error) {
	if difficulty != "" && !difficulty.IsValid() {
		return RecipeFilter{}, fmt.Errorf("invalid difficulty %q: %w", difficulty, domain.ErrInvalidFilter)
	}
	if err := validateTimeRange("prep_time", prepTimeMin, prepTimeMax); err != nil {
		return RecipeFilter{}, err
	}
	if err := validateTimeRange("cook_time", cookTimeMin, cookTimeMax); err != nil {
		return RecipeFilter{}, err
	}
	if err := validateServingsRange(servingsMin, servingsMax); err != nil {
		return RecipeFilter{}, err
	}
	if maxTotalTime != nil && (*maxTotalTime < 0 || *maxTotalTime > 2*MaxTimeBoundMinutes) {
		return RecipeFilter{}, fmt.Errorf("max_total_time out of range: %w", domain.ErrInvalidFilter)
	}

	normalized := make([]string, 0, len(dietaryRestrictions))
	for _, tag := range dietaryRestrictions {
		lower := strings.ToLower(strings.TrimSpace(tag))
		if !supportedDietary[lower] {
			return RecipeFilter{}, fmt.Errorf("unsupported dietary restriction %q: %w", tag, domain.ErrInvalidFilter)
		}
		normalized = append(normalized, lower)
	}
	if len(normalized) == 0 {
		normalized = nil
	}

	return RecipeFilter{
		difficulty:          difficulty,
		prepTimeMin:         prepTimeMin,
		prepTimeMax:         prepTimeMax,
		cookTimeMin:         cookTimeMin,
		cookTimeMax:         cookTimeMax,
		servingsMin:         servingsMin,
		servingsMax:         servingsMax,
		dietaryRestrictions: normalized,
		maxTotalTime:        maxTotalTime,
	}, nil
}

func validateTimeRange(name string, min, max *int) error {
	for _, bound := range []*int{min, max} {
		if bound != nil && (*bound < 0 || *bound > MaxTimeBoundMinutes) {
			return fmt.Errorf("%s bound out of range: %w", name, domain.ErrInvalidFilter)
		}
	}
	if min != nil && max != nil && *min > *max {
		return fmt.Errorf("%s_min cannot be greater than %s_max: %w", name, name, domain.ErrInvalidFilter)
	}
	return nil
}

func validateServingsRange(min, max *int) error {
	for _, bound := range []*int{min, max} {
		if bound != nil && (*bound < 1 || *bound > recipe.MaxServings) {
			return fmt.Errorf("servings bound must be between 1 and %d: %w", recipe.MaxServings, domain.ErrInvalidFilter)
		}
	}
	if min != nil && max != nil && *min > *max {
		return fmt.Errorf("servings_min cannot be greater than servings_max: %w", domain.ErrInvalidFilter)
	}
	return nil
}

// Difficulty returns the required difficulty ("" when unconstrained).
func (f RecipeFilter) Difficulty() recipe.Difficulty { return f.difficulty }

// PrepTimeMin returns the inclusive lower prep time bound.
func (f RecipeFilter) PrepTimeMin() *int { return f.prepTimeMin }

// PrepTimeMax returns the inclusive upper prep time bound.
func (f RecipeFilter) PrepTimeMax() *int { return f.prepTimeMax }

// CookTimeMin returns the inclusive lower cook time bound.
func (f RecipeFilter) CookTimeMin() *int { return f.cookTimeMin }

// CookTimeMax returns the inclusive upper cook time bound.
func (f RecipeFilter) CookTimeMax() *int { return f.cookTimeMax }

// ServingsMin returns the inclusive lower servings bound.
func (f RecipeFilter) ServingsMin() *int { return f.servingsMin }

// ServingsMax returns the inclusive upper servings bound.
func (f RecipeFilter) ServingsMax() *int { return f.servingsMax }

// DietaryRestrictions returns the normalized dietary tags.
func (f RecipeFilter) DietaryRestrictions() []string {
	if f.dietaryRestrictions == nil {
		return nil
	}
	out := make([]string, len(f.dietaryRestrictions))
	copy(out, f.dietaryRestrictions)
	return out
}

// MaxTotalTime returns the inclusive prep+cook bound.
func (f RecipeFilter) MaxTotalTime() *int { return f.maxTotalTime }

// HasFilters reports whether any constraint is set.
func (f RecipeFilter) HasFilters() bool {
	return f.difficulty != "" ||
		f.prepTimeMin != nil || f.prepTimeMax != nil ||
		f.cookTimeMin != nil || f.cookTimeMax != nil ||
		f.servingsMin != nil || f.servingsMax != nil ||
		len(f.dietaryRestrictions) > 0 ||
		f.maxTotalTime != nil
}

// Passes evaluates the filter against a metadata snapshot. Missing numeric
// metadata fails any active range check on that field rather than passing,
// so incomplete records never surface as false positives.
func (f RecipeFilter) Passes(meta recipe.Metadata) bool {
	if !f.HasFilters() {
		return true
	}
	if f.difficulty != "" && meta.Difficulty != f.difficulty {
		return false
	}
	if !passesRange(meta.PrepTimeMinutes, f.prepTimeMin, f.prepTimeMax) {
		return false
	}
	if !passesRange(meta.CookTimeMinutes, f.cookTimeMin, f.cookTimeMax) {
		return false
	}
	if !passesRange(meta.Servings, f.servingsMin, f.servingsMax) {
		return false
	}
	if f.maxTotalTime != nil {
		total := meta.TotalTimeMinutes()
		if total == nil || *total > *f.maxTotalTime {
			return false
		}
	}
	if len(f.dietaryRestrictions) > 0 && !f.passesDietary(meta) {
		return false
	}
	return true
}

func passesRange(value, min, max *int) bool {
	if min == nil && max == nil {
		return true
	}
	if value == nil {
		return false
	}
	if min != nil && *value < *min {
		return false
	}
	if max != nil && *value > *max {
		return false
	}
	return true
}

// passesDietary matches if at least one requested restriction holds: either
// the tag appears verbatim in the title+ingredients text, or a built-in
// heuristic for that tag matches.
func (f RecipeFilter) passesDietary(meta recipe.Metadata) bool {
	text := meta.DietaryText()
	for _, restriction := range f.dietaryRestrictions {
		if strings.Contains(text, restriction) {
			return true
		}
		switch restriction {
		case "vegetarian":
			if !containsAny(text, meatKeywords) {
				return true
			}
		case "vegan":
			if !containsAny(text, veganExcluded) {
				return true
			}
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
