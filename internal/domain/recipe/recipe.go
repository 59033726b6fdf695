// Package recipe defines the recipe aggregate and its derived texts.
package recipe

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Field limits enforced by New.
const (
	MaxIDLength    = 256
	MaxTitleLength = 512
	MaxServings    = 50
	// MaxItemLength is the maximum size of a single ingredient or instruction.
	MaxItemLength = 2048
	MaxItems      = 100
)

// Recipe is an immutable recipe with validated fields.
// Use New for user input, Reconstruct for hydration from storage.
type Recipe struct {
	id              string
	title           string
	difficulty      Difficulty
	prepTimeMinutes int
	cookTimeMinutes int
	servings        int
	ingredients     []string
	instructions    []string
	vector          []float32
}

// New validates and creates a Recipe.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Servings: 1-50. Times: non-negative.
func New(
	id, title string, difficulty Difficulty,
	prepTimeMinutes, cookTimeMinutes, servings int,
	ingredients, instructions []string,
) (Recipe, error) {
	if id == "" {
		return Recipe{}, fmt.Errorf("recipe ID is required")
	}
	if len(id) > MaxIDLength {
		return Recipe{}, fmt.Errorf("recipe ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Recipe{}, fmt.Errorf("recipe ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(title) == "" {
		return Recipe{}, fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLength {
		return Recipe{}, fmt.Errorf("title too long (max %d chars)", MaxTitleLength)
	}
	if !difficulty.IsValid() {
		return Recipe{}, fmt.Errorf("invalid difficulty %q", difficulty)
	}
	if prepTimeMinutes < 0 {
		return Recipe{}, fmt.Errorf("prep_time_minutes cannot be negative")
	}
	if cookTimeMinutes < 0 {
		return Recipe{}, fmt.Errorf("cook_time_minutes cannot be negative")
	}
	if servings < 1 || servings > MaxServings {
		return Recipe{}, fmt.Errorf("servings must be between 1 and %d", MaxServings)
	}
	if err := validateItems("ingredient", ingredients); err != nil {
		return Recipe{}, err
	}
	if err := validateItems("instruction", instructions); err != nil {
		return Recipe{}, err
	}

	return Recipe{
		id:              id,
		title:           title,
		difficulty:      difficulty,
		prepTimeMinutes: prepTimeMinutes,
		cookTimeMinutes: cookTimeMinutes,
		servings:        servings,
		ingredients:     cloneStrings(ingredients),
		instructions:    cloneStrings(instructions),
	}, nil
}

// Reconstruct creates a Recipe from trusted storage data without validation.
func Reconstruct(
	id, title string, difficulty Difficulty,
	prepTimeMinutes, cookTimeMinutes, servings int,
	ingredients, instructions []string,
	vector []float32,
) Recipe {
	return Recipe{
		id:              id,
		title:           title,
		difficulty:      difficulty,
		prepTimeMinutes: prepTimeMinutes,
		cookTimeMinutes: cookTimeMinutes,
		servings:        servings,
		ingredients:     ingredients,
		instructions:    instructions,
		vector:          vector,
	}
}

func validateItems(kind string, items []string) error {
	if len(items) == 0 {
		return fmt.Errorf("at least one %s is required", kind)
	}
	if len(items) > MaxItems {
		return fmt.Errorf("too many %ss (max %d)", kind, MaxItems)
	}
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%s %d is empty", kind, i+1)
		}
		if len(item) > MaxItemLength {
			return fmt.Errorf("%s %d too long (max %d chars)", kind, i+1, MaxItemLength)
		}
	}
	return nil
}

// ID returns the recipe identifier.
func (r *Recipe) ID() string { return r.id }

// Title returns the recipe name.
func (r *Recipe) Title() string { return r.title }

// Difficulty returns the skill level.
func (r *Recipe) Difficulty() Difficulty { return r.difficulty }

// PrepTimeMinutes returns the preparation time in minutes.
func (r *Recipe) PrepTimeMinutes() int { return r.prepTimeMinutes }

// CookTimeMinutes returns the cooking time in minutes.
func (r *Recipe) CookTimeMinutes() int { return r.cookTimeMinutes }

// TotalTimeMinutes returns prep plus cook time.
func (r *Recipe) TotalTimeMinutes() int { return r.prepTimeMinutes + r.cookTimeMinutes }

// Servings returns the number of servings.
func (r *Recipe) Servings() int { return r.servings }

// Ingredients returns the ordered ingredient list.
func (r *Recipe) Ingredients() []string { return r.ingredients }

// Instructions returns the ordered instruction steps.
func (r *Recipe) Instructions() []string { return r.instructions }

// Vector returns the embedding vector (nil if not embedded yet).
func (r *Recipe) Vector() []float32 { return r.vector }

// WithVector returns a copy of the recipe with the embedding attached.
func (r Recipe) WithVector(vector []float32) Recipe {
	r.vector = vector
	return r
}

// Body returns the ingredient and instruction text for keyword indexing.
// The title is indexed separately at a higher weight.
func (r *Recipe) Body() string {
	var sb strings.Builder
	for _, ing := range r.ingredients {
		sb.WriteString(ing)
		sb.WriteByte('\n')
	}
	for _, step := range r.instructions {
		sb.WriteString(step)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// EmbeddingText renders the recipe as a single semantic-search document.
func (r *Recipe) EmbeddingText() string {
	components := []string{
		fmt.Sprintf("Recipe: %s", r.title),
		fmt.Sprintf("Difficulty: %s", r.difficulty),
		fmt.Sprintf("Cooking time: %d minutes prep, %d minutes cook", r.prepTimeMinutes, r.cookTimeMinutes),
		fmt.Sprintf("Serves %d people", r.servings),
		fmt.Sprintf("Ingredients: %s", strings.Join(r.ingredients, " | ")),
		fmt.Sprintf("Instructions: %s", strings.Join(r.instructions, " ")),
	}
	return strings.Join(components, "\n")
}

// Metadata returns the filterable snapshot of the recipe.
func (r *Recipe) Metadata() Metadata {
	prep, cook, servings := r.prepTimeMinutes, r.cookTimeMinutes, r.servings
	return Metadata{
		Title:            r.title,
		Difficulty:       r.difficulty,
		PrepTimeMinutes:  &prep,
		CookTimeMinutes:  &cook,
		Servings:         &servings,
		IngredientCount:  len(r.ingredients),
		InstructionCount: len(r.instructions),
		Ingredients:      cloneStrings(r.ingredients),
	}
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
