package chi

import (
	"context"

	dombatch "github.com/umami-labs/recipedex/internal/domain/batch"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	domusage "github.com/umami-labs/recipedex/internal/domain/usage"
	batchuc "github.com/umami-labs/recipedex/internal/usecase/batch"
	healthuc "github.com/umami-labs/recipedex/internal/usecase/health"
	indexeruc "github.com/umami-labs/recipedex/internal/usecase/indexer"
)

// Searcher answers search queries. Satisfied by the search service and by
// its caching decorator, so the wiring decides whether results are cached.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Fused, error)
}

// SimilarSearcher finds recipes related to a stored one.
type SimilarSearcher interface {
	Similar(ctx context.Context, id string, req *request.SimilarRequest) ([]result.Fused, error)
}

// RecipeService is the catalog CRUD surface.
type RecipeService interface {
	Upsert(ctx context.Context, rec *domrec.Recipe) (created bool, err error)
	Get(ctx context.Context, id string) (domrec.Recipe, error)
	List(ctx context.Context, cursor string, limit int) ([]domrec.Recipe, string, error)
	Delete(ctx context.Context, id string) error
}

// BatchService processes multi-recipe writes with per-item outcomes.
type BatchService interface {
	Upsert(ctx context.Context, items []batchuc.UpsertItem) []dombatch.Result
	Delete(ctx context.Context, ids []string) []dombatch.Result
}

// Rebuilder runs a synchronous keyword index rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) (indexeruc.Stats, error)
}

// UsageReporter reports embedding API usage and budget state.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker reports aggregated component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
