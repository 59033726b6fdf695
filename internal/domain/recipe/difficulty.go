package recipe

// Difficulty is the declared skill level of a recipe.
type Difficulty string

// Difficulty levels.
const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// IsValid checks if the difficulty is one of the supported levels.
func (d Difficulty) IsValid() bool {
	return d == Beginner || d == Intermediate || d == Advanced
}
