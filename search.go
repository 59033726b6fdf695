package recipedex

import (
	"context"
	"fmt"
	"time"

	"github.com/umami-labs/recipedex/internal/domain/search/mode"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
)

// SearchOptions configures a search query. The zero value runs a hybrid
// search with default fusion weights and ten results.
type SearchOptions struct {
	Mode    SearchMode
	Filters Filters
	Limit   int

	// SparseWeight and DenseWeight bias fusion toward one retrieval path.
	// Nil means 0.5. They need not sum to one.
	SparseWeight *float64
	DenseWeight  *float64
}

// SimilarOptions configures a more-like-this query.
type SimilarOptions struct {
	Filters Filters
	Limit   int
}

// Search runs a recipe search. An empty or whitespace-only query returns no
// hits. opts may be nil.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (_ []Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	if opts == nil {
		opts = &SearchOptions{}
	}
	filters, err := toInternalFilter(opts.Filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = request.DefaultNResults
	}

	req, err := request.New(
		query, mode.Mode(opts.Mode), filters, limit,
		opts.SparseWeight, opts.DenseWeight,
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromFusedResults(results), nil
}

// Similar returns recipes close to the given one in embedding space, the
// source recipe excluded. opts may be nil.
func (c *Client) Similar(ctx context.Context, id string, opts *SimilarOptions) (_ []Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	if opts == nil {
		opts = &SimilarOptions{}
	}
	filters, err := toInternalFilter(opts.Filters)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = request.DefaultNResults
	}

	req, err := request.NewSimilar(filters, limit)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}

	results, err := c.similarSvc.Similar(ctx, id, &req)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	return fromFusedResults(results), nil
}
