package recipedex

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

// --- recipeUseCase mock ---

type mockRecipeUC struct {
	upsertFn func(ctx context.Context, rec *domrec.Recipe) (bool, error)
	getFn    func(ctx context.Context, id string) (domrec.Recipe, error)
	listFn   func(ctx context.Context, cursor string, limit int) ([]domrec.Recipe, string, error)
	deleteFn func(ctx context.Context, id string) error
	countFn  func(ctx context.Context) (int, error)
}

func (m *mockRecipeUC) Upsert(ctx context.Context, rec *domrec.Recipe) (bool, error) {
	return m.upsertFn(ctx, rec)
}

func (m *mockRecipeUC) Get(ctx context.Context, id string) (domrec.Recipe, error) {
	return m.getFn(ctx, id)
}

func (m *mockRecipeUC) List(ctx context.Context, cursor string, limit int) ([]domrec.Recipe, string, error) {
	return m.listFn(ctx, cursor, limit)
}

func (m *mockRecipeUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockRecipeUC) Count(ctx context.Context) (int, error) {
	return m.countFn(ctx)
}

// --- batchUseCase mock ---

type mockBatchUC struct {
	upsertFn func(ctx context.Context, items []batchuc.UpsertItem) []dombatch.Result
	deleteFn func(ctx context.Context, ids []string) []dombatch.Result
}

func (m *mockBatchUC) Upsert(ctx context.Context, items []batchuc.UpsertItem) []dombatch.Result {
	return m.upsertFn(ctx, items)
}

func (m *mockBatchUC) Delete(ctx context.Context, ids []string) []dombatch.Result {
	return m.deleteFn(ctx, ids)
}

// --- searchUseCase / similarUseCase mocks ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) ([]result.Fused, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	return m.searchFn(ctx, req)
}

type mockSimilarUC struct {
	similarFn func(ctx context.Context, id string, req *request.SimilarRequest) ([]result.Fused, error)
}

func (m *mockSimilarUC) Similar(ctx context.Context, id string, req *request.SimilarRequest) ([]result.Fused, error) {
	return m.similarFn(ctx, id, req)
}

// --- indexerUseCase mock ---

type mockIndexerUC struct {
	rebuildFn func(ctx context.Context) (indexeruc.Stats, error)
	closed    bool
}

func (m *mockIndexerUC) Rebuild(ctx context.Context) (indexeruc.Stats, error) {
	return m.rebuildFn(ctx)
}

func (m *mockIndexerUC) Close() { m.closed = true }

// --- healthUseCase / usageUseCase mocks ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}

type mockUsageUC struct {
	reportFn func(ctx context.Context, period domusage.Period) domusage.Report
}

func (m *mockUsageUC) GetReport(ctx context.Context, period domusage.Period) domusage.Report {
	return m.reportFn(ctx, period)
}

// --- Embedder mock ---

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}
