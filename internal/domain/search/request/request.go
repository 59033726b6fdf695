package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/umami-labs/recipedex/internal/domain"
	"github.com/umami-labs/recipedex/internal/domain/search/filter"
	"github.com/umami-labs/recipedex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	// DefaultNResults is applied by callers when the parameter is absent.
	DefaultNResults = 10
	MaxNResults     = 100
	// DefaultWeight is the per-source fusion weight when not overridden.
	DefaultWeight = 0.5
)

// Request is a validated search query. An empty or whitespace-only query is
// legal and yields an empty result set downstream.
type Request struct {
	query        string
	searchMode   mode.Mode
	filters      filter.RecipeFilter
	nResults     int
	sparseWeight float64
	denseWeight  float64
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, weights=0.5 each. nResults must be positive and is
// clamped to MaxNResults. Weights must be finite and non-negative; they need
// not sum to one.
func New(
	query string,
	m mode.Mode,
	filters filter.RecipeFilter,
	nResults int,
	sparseWeight, denseWeight *float64,
) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrInvalidRequest)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode %q: %w", m, domain.ErrInvalidRequest)
	}
	if nResults <= 0 {
		return Request{}, fmt.Errorf("n_results must be positive: %w", domain.ErrInvalidRequest)
	}
	if nResults > MaxNResults {
		nResults = MaxNResults
	}

	ws, err := normalizeWeight("sparse_weight", sparseWeight)
	if err != nil {
		return Request{}, err
	}
	wd, err := normalizeWeight("dense_weight", denseWeight)
	if err != nil {
		return Request{}, err
	}

	return Request{
		query:        query,
		searchMode:   m,
		filters:      filters,
		nResults:     nResults,
		sparseWeight: ws,
		denseWeight:  wd,
	}, nil
}

func normalizeWeight(name string, w *float64) (float64, error) {
	if w == nil {
		return DefaultWeight, nil
	}
	if math.IsNaN(*w) || math.IsInf(*w, 0) {
		return 0, fmt.Errorf("%s must be a finite number: %w", name, domain.ErrInvalidRequest)
	}
	if *w < 0 {
		return 0, fmt.Errorf("%s cannot be negative: %w", name, domain.ErrInvalidRequest)
	}
	return *w, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the metadata post-filter.
func (r *Request) Filters() filter.RecipeFilter { return r.filters }

// NResults returns the maximum results to return.
func (r *Request) NResults() int { return r.nResults }

// SparseWeight returns the keyword-path fusion weight.
func (r *Request) SparseWeight() float64 { return r.sparseWeight }

// DenseWeight returns the semantic-path fusion weight.
func (r *Request) DenseWeight() float64 { return r.denseWeight }

// EmptyQuery reports whether the query is empty or whitespace-only.
func (r *Request) EmptyQuery() bool { return strings.TrimSpace(r.query) == "" }
