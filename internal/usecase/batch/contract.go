package batch

import (
	"context"

	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
)

// BulkUpserter stores a validated batch in one pipelined write.
type BulkUpserter interface {
	UpsertMulti(ctx context.Context, recs []*domrec.Recipe) error
}

// Deleter removes one recipe from storage.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// BatchEmbedder vectorizes multiple texts in a single API call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// StaleMarker is notified after batch writes reach storage.
type StaleMarker interface {
	MarkStale()
}
