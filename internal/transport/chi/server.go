package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/domain"
	dombatch "github.com/umami-labs/recipedex/internal/domain/batch"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/filter"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
	domusage "github.com/umami-labs/recipedex/internal/domain/usage"
	batchuc "github.com/umami-labs/recipedex/internal/usecase/batch"
	healthuc "github.com/umami-labs/recipedex/internal/usecase/health"
	"github.com/umami-labs/recipedex/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the recipe search API over HTTP.
type Server struct {
	searcher      Searcher
	similar       SimilarSearcher
	recipes       RecipeService
	batch         BatchService
	indexer       Rebuilder
	usage         UsageReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler

	// Deployment-level fusion weights, applied when a search request
	// leaves them out. Nil means the request layer's own defaults.
	defaultSparseWeight *float64
	defaultDenseWeight  *float64
}

// NewServer creates an HTTP API server.
func NewServer(
	searcher Searcher,
	similar SimilarSearcher,
	recipes RecipeService,
	batch BatchService,
	indexer Rebuilder,
	usage UsageReporter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		searcher: searcher,
		similar:  similar,
		recipes:  recipes,
		batch:    batch,
		indexer:  indexer,
		usage:    usage,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRecipeNotFound, http.StatusNotFound, CodeRecipeNotFound),
		sentinelHandler(domain.ErrInvalidRecipe, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, CodeInvalidFilter),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusPaymentRequired, CodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, CodeEmbeddingProviderError),
		// Both-paths-down before single-path so the 503 wins when the
		// unavailable error joins the per-path causes.
		sentinelHandler(domain.ErrSearchUnavailable,
			http.StatusServiceUnavailable, CodeSearchUnavailable),
		sentinelHandler(domain.ErrRetrieval, http.StatusBadGateway, CodeRetrievalFailed),
	}
	return s
}

// WithFusionWeights sets the sparse/dense weights used for search requests
// that do not specify their own.
func (s *Server) WithFusionWeights(sparse, dense float64) *Server {
	s.defaultSparseWeight = &sparse
	s.defaultDenseWeight = &dense
	return s
}

// RegisterRoutes mounts every API route on the given router.
func (s *Server) RegisterRoutes(r gochi.Router) {
	r.Get("/healthz", s.Liveness)
	r.Get("/readyz", s.Readiness)
	r.Get("/metrics", s.Metrics)
	r.Get("/version", s.Version)

	r.Route("/v1", func(r gochi.Router) {
		r.Post("/search", s.SearchRecipes)
		r.Route("/recipes", func(r gochi.Router) {
			r.Get("/", s.ListRecipes)
			r.Post("/batch", s.BatchUpsert)
			r.Delete("/batch", s.BatchDelete)
			r.Put("/{id}", s.UpsertRecipe)
			r.Get("/{id}", s.GetRecipe)
			r.Delete("/{id}", s.DeleteRecipe)
			r.Get("/{id}/similar", s.SimilarRecipes)
		})
		r.Post("/index/rebuild", s.RebuildIndex)
		r.Get("/usage", s.GetUsage)
	})
}

// SearchRecipes handles POST /v1/search.
func (s *Server) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.SparseWeight == nil {
		req.SparseWeight = s.defaultSparseWeight
	}
	if req.DenseWeight == nil {
		req.DenseWeight = s.defaultDenseWeight
	}

	searchReq, err := searchRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, requestErrorCode(err), err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.searcher.Search(ctx, &searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Items: searchResultsToDTO(results),
		Limit: searchReq.NResults(),
		Total: len(results),
	})
}

// SimilarRecipes handles GET /v1/recipes/{id}/similar.
func (s *Server) SimilarRecipes(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	nResults := request.DefaultNResults
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "limit must be an integer")
			return
		}
		nResults = n
	}

	var maxTotal *int
	if raw := r.URL.Query().Get("max_total_time_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				"max_total_time_minutes must be an integer")
			return
		}
		maxTotal = &n
	}

	filters, err := filter.New(
		domrec.Difficulty(r.URL.Query().Get("difficulty")),
		nil, nil, nil, nil, nil, nil, nil, maxTotal,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidFilter, err.Error())
		return
	}

	simReq, err := request.NewSimilar(filters, nResults)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	results, err := s.similar.Similar(r.Context(), id, &simReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Items: searchResultsToDTO(results),
		Limit: simReq.NResults(),
		Total: len(results),
	})
}

// UpsertRecipe handles PUT /v1/recipes/{id}.
func (s *Server) UpsertRecipe(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := recipeFromRequest(id, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	created, err := s.recipes.Upsert(ctx, &rec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/v1/recipes/%s", id))
	}
	setEmbeddingHeaders(w, usage)

	writeJSON(w, status, recipeToResponse(&rec))
}

// GetRecipe handles GET /v1/recipes/{id}.
func (s *Server) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	rec, err := s.recipes.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recipeToResponse(&rec))
}

// DeleteRecipe handles DELETE /v1/recipes/{id}.
func (s *Server) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	if err := s.recipes.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRecipes handles GET /v1/recipes.
func (s *Server) ListRecipes(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	limit := 0 // zero lets the service apply its default page size
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "limit must be an integer")
			return
		}
		limit = n
	}

	recs, nextCursor, err := s.recipes.List(r.Context(), cursor, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]RecipeResponse, len(recs))
	for i := range recs {
		items[i] = recipeToResponse(&recs[i])
	}

	resp := RecipeListResponse{
		Items:   items,
		HasMore: nextCursor != "",
	}
	if nextCursor != "" {
		resp.NextCursor = &nextCursor
	}

	writeJSON(w, http.StatusOK, resp)
}

// BatchUpsert handles POST /v1/recipes/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	var req BatchUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Recipes) == 0 || len(req.Recipes) > batchuc.MaxBatchSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("recipes count must be between 1 and %d", batchuc.MaxBatchSize))
		return
	}

	items := make([]batchuc.UpsertItem, len(req.Recipes))
	for i, item := range req.Recipes {
		items[i] = batchItemToUpsert(item)
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results := s.batch.Upsert(ctx, items)

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, batchResponseFromResults(results))
}

// BatchDelete handles DELETE /v1/recipes/batch.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.IDs) == 0 || len(req.IDs) > batchuc.MaxBatchSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("ids count must be between 1 and %d", batchuc.MaxBatchSize))
		return
	}

	results := s.batch.Delete(r.Context(), req.IDs)

	writeJSON(w, http.StatusOK, batchResponseFromResults(results))
}

// RebuildIndex handles POST /v1/index/rebuild.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	stats, err := s.indexer.Rebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RebuildResponse{
		Docs:   stats.Docs,
		Terms:  stats.Terms,
		TookMs: stats.Took.Milliseconds(),
	})
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var period domusage.Period
	switch raw := r.URL.Query().Get("period"); raw {
	case "", string(domusage.PeriodMonth):
		period = domusage.PeriodMonth
	case string(domusage.PeriodDay):
		period = domusage.PeriodDay
	case string(domusage.PeriodTotal):
		period = domusage.PeriodTotal
	default:
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"period must be one of: day, month, total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := UsageResponse{
		Period: string(report.Period()),
		Usage: UsageMetrics{
			EmbeddingRequests: report.Metrics().EmbeddingRequests(),
			Tokens:            report.Metrics().Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}

	if report.Metrics().CostMillidollars() > 0 {
		cost := report.Metrics().CostMillidollars()
		resp.Usage.CostMillidollars = &cost
	}

	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	if report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// Liveness handles GET /healthz. Succeeds whenever the process accepts
// connections; dependency state is /readyz territory.
func (s *Server) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /readyz. A degraded report still answers 200: one
// surviving retrieval path beats being pulled from rotation.
func (s *Server) Readiness(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version: version.Version,
		Commit:  version.Commit,
		Date:    version.Date,
	})
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// requestErrorCode picks the error code for a request that failed conversion
// before reaching a usecase.
func requestErrorCode(err error) ErrorCode {
	if errors.Is(err, domain.ErrInvalidFilter) {
		return CodeInvalidFilter
	}
	return CodeValidationFailed
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRecipeNotFound,
		domain.ErrInvalidRecipe,
		domain.ErrInvalidRequest,
		domain.ErrInvalidFilter,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrSearchUnavailable,
		domain.ErrRetrieval,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func batchResponseFromResults(results []dombatch.Result) BatchResponse {
	succeeded, failed := 0, 0
	items := make([]BatchResultItem, len(results))
	for i, res := range results {
		items[i] = batchResultToDTO(res)
		if res.Status() == dombatch.StatusOK {
			succeeded++
		} else {
			failed++
		}
	}
	return BatchResponse{
		Items:     items,
		Succeeded: succeeded,
		Failed:    failed,
	}
}

func batchResultToDTO(r dombatch.Result) BatchResultItem {
	item := BatchResultItem{
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		item.Error = &ErrorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound):
		return CodeRecipeNotFound
	case errors.Is(err, domain.ErrInvalidRecipe):
		return CodeValidationFailed
	case errors.Is(err, domain.ErrInvalidRequest):
		return CodeValidationFailed
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return CodeVectorDimMismatch
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return CodeEmbeddingQuotaExceeded
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return CodeEmbeddingProviderError
	case errors.Is(err, domain.ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternalError
	}
}
