package request

import (
	"fmt"

	"github.com/umami-labs/recipedex/internal/domain"
	"github.com/umami-labs/recipedex/internal/domain/search/filter"
)

// SimilarRequest is a validated "recipes like this one" query. It rides the
// dense path only, seeded by a stored recipe's vector instead of query text.
type SimilarRequest struct {
	filters  filter.RecipeFilter
	nResults int
}

// NewSimilar validates and normalizes similar request parameters.
func NewSimilar(filters filter.RecipeFilter, nResults int) (SimilarRequest, error) {
	if nResults <= 0 {
		return SimilarRequest{}, fmt.Errorf("n_results must be positive: %w", domain.ErrInvalidRequest)
	}
	if nResults > MaxNResults {
		nResults = MaxNResults
	}
	return SimilarRequest{filters: filters, nResults: nResults}, nil
}

// Filters returns the metadata post-filter.
func (r *SimilarRequest) Filters() filter.RecipeFilter { return r.filters }

// NResults returns the maximum results to return.
func (r *SimilarRequest) NResults() int { return r.nResults }
