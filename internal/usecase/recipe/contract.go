package recipe

import (
	"context"

	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
)

// Repository defines the storage contract for recipes.
type Repository interface {
	Upsert(ctx context.Context, rec *domrec.Recipe) (created bool, err error)
	Get(ctx context.Context, id string) (domrec.Recipe, error)
	List(ctx context.Context, cursor string, limit int) (
		recs []domrec.Recipe, nextCursor string, err error,
	)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// StaleMarker is notified after every catalog write so the keyword index
// can schedule a rebuild.
type StaleMarker interface {
	MarkStale()
}
