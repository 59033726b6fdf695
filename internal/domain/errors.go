package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFilter signals a malformed recipe filter (min > max,
	// out-of-range bound, unsupported dietary tag).
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidRecipe signals a recipe that fails domain validation.
	ErrInvalidRecipe = errors.New("invalid recipe")
	// ErrRecipeNotFound signals a missing recipe.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrRetrieval signals a failure on a single retrieval path (sparse or
	// dense). The orchestrator recovers locally and degrades.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrSearchUnavailable signals that both retrieval paths failed. Callers
	// can distinguish "nothing matched" from "the search subsystem is down".
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrIndexNotBuilt signals a query against a sparse index that has never
	// completed a build. Treated as an empty sparse result, not fatal.
	ErrIndexNotBuilt = errors.New("sparse index not built")

	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// PathError wraps ErrRetrieval with the retrieval path that failed, so logs
// and metrics can tell sparse and dense failures apart.
type PathError struct {
	Path string // "sparse" or "dense"
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Path, ErrRetrieval.Error(), e.Err)
}

func (e *PathError) Unwrap() error { return ErrRetrieval }

// NewPathError creates a retrieval path error.
func NewPathError(path string, err error) error {
	return &PathError{Path: path, Err: err}
}
