package recipedex

// SearchMode controls which retrieval paths a query runs.
type SearchMode string

// Search mode constants.
const (
	ModeHybrid SearchMode = "hybrid"
	ModeSparse SearchMode = "sparse"
	ModeDense  SearchMode = "dense"
)

// Difficulty is the skill level of a recipe.
type Difficulty string

// Difficulty constants.
const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Recipe is the catalog entry the client stores and searches.
type Recipe struct {
	ID              string
	Title           string
	Difficulty      Difficulty
	PrepTimeMinutes int
	CookTimeMinutes int
	Servings        int
	Ingredients     []string
	Instructions    []string
}

// Filters narrows search results by recipe metadata. The zero value matches
// everything. Nil bounds mean "no constraint on this dimension"; dietary
// tags match if any one of them holds.
type Filters struct {
	Difficulty   Difficulty
	PrepTimeMin  *int
	PrepTimeMax  *int
	CookTimeMin  *int
	CookTimeMax  *int
	ServingsMin  *int
	ServingsMax  *int
	MaxTotalTime *int
	Dietary      []string
}

// Hit is a single fused search result. SparseScore/DenseScore and the ranks
// describe where each retrieval path placed the recipe; a rank of zero means
// that path did not return it.
type Hit struct {
	ID          string
	Score       float64
	SparseScore float64
	DenseScore  float64
	SparseRank  int
	DenseRank   int
	Metadata    *HitMetadata
}

// HitMetadata is the recipe snapshot attached to a search hit. Pointer
// fields are nil when the stored recipe predates that attribute.
type HitMetadata struct {
	Title            string
	Difficulty       Difficulty
	PrepTimeMinutes  *int
	CookTimeMinutes  *int
	TotalTimeMinutes *int
	Servings         *int
	IngredientCount  int
	InstructionCount int
}

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

// ListResult is a paginated page of recipes.
type ListResult struct {
	Recipes    []Recipe
	NextCursor string
}
