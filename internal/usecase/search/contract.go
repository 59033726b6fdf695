package search

import (
	"context"

	"github.com/umami-labs/recipedex/internal/domain"
	"github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
)

// SparseSearcher ranks the in-process keyword index. Implementations are
// CPU-only and must be safe for concurrent queries.
type SparseSearcher interface {
	Search(query string, topN int) ([]result.Sparse, error)
}

// DenseSearcher runs vector KNN against the search engine.
type DenseSearcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]result.Dense, error)
}

// MetadataReader loads metadata snapshots for candidate ids. Missing ids are
// simply absent from the returned map.
type MetadataReader interface {
	GetMetadataMulti(ctx context.Context, ids []string) (map[string]recipe.Metadata, error)
}

// RecipeReader loads a full recipe (Similar needs the stored vector).
type RecipeReader interface {
	Get(ctx context.Context, id string) (recipe.Recipe, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
