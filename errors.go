package recipedex

import "github.com/umami-labs/recipedex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrRecipeNotFound         = domain.ErrRecipeNotFound
	ErrInvalidRecipe          = domain.ErrInvalidRecipe
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrInvalidFilter          = domain.ErrInvalidFilter
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrIndexNotBuilt          = domain.ErrIndexNotBuilt
	ErrSearchUnavailable      = domain.ErrSearchUnavailable
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
