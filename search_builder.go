package recipedex

import "context"

// SearchBuilder is a fluent builder for search queries.
//
//	hits, err := client.Query("quick pasta").
//	    Difficulty(recipedex.DifficultyBeginner).
//	    MaxTotalTime(30).
//	    Limit(5).
//	    Do(ctx)
type SearchBuilder struct {
	c *Client

	query   string
	mode    SearchMode
	filters Filters
	limit   int

	sparseWeight *float64
	denseWeight  *float64
}

// Query starts a fluent search for the given text.
func (c *Client) Query(q string) *SearchBuilder {
	return &SearchBuilder{c: c, query: q}
}

// Mode sets the search mode (hybrid, sparse, dense). Default: hybrid.
func (b *SearchBuilder) Mode(m SearchMode) *SearchBuilder {
	b.mode = m
	return b
}

// Difficulty requires an exact difficulty level.
func (b *SearchBuilder) Difficulty(d Difficulty) *SearchBuilder {
	b.filters.Difficulty = d
	return b
}

// MaxPrepTime caps preparation time in minutes.
func (b *SearchBuilder) MaxPrepTime(minutes int) *SearchBuilder {
	b.filters.PrepTimeMax = &minutes
	return b
}

// MaxCookTime caps cooking time in minutes.
func (b *SearchBuilder) MaxCookTime(minutes int) *SearchBuilder {
	b.filters.CookTimeMax = &minutes
	return b
}

// MaxTotalTime caps prep plus cook time in minutes.
func (b *SearchBuilder) MaxTotalTime(minutes int) *SearchBuilder {
	b.filters.MaxTotalTime = &minutes
	return b
}

// Servings bounds the serving count inclusively on both ends.
func (b *SearchBuilder) Servings(min, max int) *SearchBuilder {
	b.filters.ServingsMin = &min
	b.filters.ServingsMax = &max
	return b
}

// Dietary requires at least one of the given dietary tags to match.
func (b *SearchBuilder) Dietary(tags ...string) *SearchBuilder {
	b.filters.Dietary = append(b.filters.Dietary, tags...)
	return b
}

// Weights biases fusion toward one retrieval path.
func (b *SearchBuilder) Weights(sparse, dense float64) *SearchBuilder {
	b.sparseWeight = &sparse
	b.denseWeight = &dense
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) ([]Hit, error) {
	return b.c.Search(ctx, b.query, &SearchOptions{
		Mode:         b.mode,
		Filters:      b.filters,
		Limit:        b.limit,
		SparseWeight: b.sparseWeight,
		DenseWeight:  b.denseWeight,
	})
}
