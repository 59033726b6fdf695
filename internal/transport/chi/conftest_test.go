package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/domain"
	dombatch "github.com/umami-labs/recipedex/internal/domain/batch"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	domusage "github.com/umami-labs/recipedex/internal/domain/usage"
	"github.com/umami-labs/recipedex/internal/domain/usage/budget"
	usagemetrics "github.com/umami-labs/recipedex/internal/domain/usage/metrics"
	batchuc "github.com/umami-labs/recipedex/internal/usecase/batch"
	healthuc "github.com/umami-labs/recipedex/internal/usecase/health"
	indexeruc "github.com/umami-labs/recipedex/internal/usecase/indexer"
)

// --- Mocks ---

type mockSearcher struct {
	results []result.Fused
	err     error
	tokens  int
	calls   int
	lastReq *request.Request
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	m.calls++
	m.lastReq = req
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	return m.results, m.err
}

type mockSimilar struct {
	results []result.Fused
	err     error
	calls   int
	lastID  string
	lastReq *request.SimilarRequest
}

func (m *mockSimilar) Similar(
	_ context.Context, id string, req *request.SimilarRequest,
) ([]result.Fused, error) {
	m.calls++
	m.lastID = id
	m.lastReq = req
	return m.results, m.err
}

type mockRecipeService struct {
	upsertCreated bool
	upsertErr     error
	upsertTokens  int
	lastUpserted  *domrec.Recipe

	getRec domrec.Recipe
	getErr error

	listRecs   []domrec.Recipe
	listNext   string
	listErr    error
	lastCursor string
	lastLimit  int

	delErr   error
	delCalls int
	lastDel  string
}

func (m *mockRecipeService) Upsert(ctx context.Context, rec *domrec.Recipe) (bool, error) {
	m.lastUpserted = rec
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	if m.upsertTokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.upsertTokens)
	}
	return m.upsertCreated, nil
}

func (m *mockRecipeService) Get(_ context.Context, _ string) (domrec.Recipe, error) {
	return m.getRec, m.getErr
}

func (m *mockRecipeService) List(
	_ context.Context, cursor string, limit int,
) ([]domrec.Recipe, string, error) {
	m.lastCursor = cursor
	m.lastLimit = limit
	return m.listRecs, m.listNext, m.listErr
}

func (m *mockRecipeService) Delete(_ context.Context, id string) error {
	m.delCalls++
	m.lastDel = id
	return m.delErr
}

type mockBatchService struct {
	upsertResults []dombatch.Result
	deleteResults []dombatch.Result
	tokens        int
	lastItems     []batchuc.UpsertItem
	lastIDs       []string
}

func (m *mockBatchService) Upsert(ctx context.Context, items []batchuc.UpsertItem) []dombatch.Result {
	m.lastItems = items
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	return m.upsertResults
}

func (m *mockBatchService) Delete(_ context.Context, ids []string) []dombatch.Result {
	m.lastIDs = ids
	return m.deleteResults
}

type mockRebuilder struct {
	stats indexeruc.Stats
	err   error
	calls int
}

func (m *mockRebuilder) Rebuild(_ context.Context) (indexeruc.Stats, error) {
	m.calls++
	return m.stats, m.err
}

type mockUsage struct {
	report     domusage.Report
	lastPeriod domusage.Period
}

func (m *mockUsage) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	m.lastPeriod = period
	return m.report
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report {
	return m.report
}

// --- Fixtures ---

type serverMocks struct {
	searcher *mockSearcher
	similar  *mockSimilar
	recipes  *mockRecipeService
	batch    *mockBatchService
	indexer  *mockRebuilder
	usage    *mockUsage
	health   *mockHealth
}

func newTestServer() (*Server, *serverMocks) {
	m := &serverMocks{
		searcher: &mockSearcher{},
		similar:  &mockSimilar{},
		recipes:  &mockRecipeService{},
		batch:    &mockBatchService{},
		indexer:  &mockRebuilder{},
		usage:    &mockUsage{report: makeUsageReport()},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
	s := NewServer(
		m.searcher, m.similar, m.recipes, m.batch,
		m.indexer, m.usage, m.health, zap.NewNop(),
	)
	return s, m
}

func makeRecipe(t *testing.T, id string) domrec.Recipe {
	t.Helper()
	rec, err := domrec.New(
		id, "Chicken Curry", domrec.Intermediate, 15, 30, 4,
		[]string{"chicken", "coconut milk", "curry paste"},
		[]string{"Brown the chicken.", "Simmer in sauce."},
	)
	if err != nil {
		t.Fatalf("make recipe: %v", err)
	}
	return rec
}

func fusedHit(id string, combined float64, sparseRank, denseRank int) result.Fused {
	return result.NewFused(id, combined, 1.4, 0.82, sparseRank, denseRank)
}

func makeUsageReport() domusage.Report {
	m := usagemetrics.New(3, 1200, 0)
	b := budget.New(100000, 98800, false, 1756857600000)
	return domusage.NewReport(domusage.PeriodMonth, 1756684800000, 1759276800000, m, b)
}

// --- HTTP helpers ---

func doJSON(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	return doRaw(t, s, method, target, rd)
}

func doRaw(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rr := httptest.NewRecorder()

	r := gochi.NewRouter()
	s.RegisterRoutes(r)
	r.ServeHTTP(rr, req)
	return rr
}

func mustDecode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func decodeErrorResponse(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var errResp ErrorResponse
	mustDecode(t, rr, &errResp)
	return errResp
}
