package chi

import (
	"fmt"
	"time"

	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/filter"
	"github.com/umami-labs/recipedex/internal/domain/search/mode"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	batchuc "github.com/umami-labs/recipedex/internal/usecase/batch"
)

// ErrorCode is a machine-readable error category in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeRecipeNotFound         ErrorCode = "recipe_not_found"
	CodeInvalidFilter          ErrorCode = "invalid_filter"
	CodeVectorDimMismatch      ErrorCode = "vector_dim_mismatch"
	CodeRateLimited            ErrorCode = "rate_limited"
	CodeEmbeddingQuotaExceeded ErrorCode = "embedding_quota_exceeded"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeRetrievalFailed        ErrorCode = "retrieval_failed"
	CodeSearchUnavailable      ErrorCode = "search_unavailable"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecipeRequest is the body of PUT /v1/recipes/{id}.
type RecipeRequest struct {
	Title           string   `json:"title"`
	Difficulty      string   `json:"difficulty"`
	PrepTimeMinutes int      `json:"prep_time_minutes"`
	CookTimeMinutes int      `json:"cook_time_minutes"`
	Servings        int      `json:"servings"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
}

// RecipeResponse is the full recipe representation. The embedding vector is
// internal and never leaves the service.
type RecipeResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Difficulty       string   `json:"difficulty"`
	PrepTimeMinutes  int      `json:"prep_time_minutes"`
	CookTimeMinutes  int      `json:"cook_time_minutes"`
	TotalTimeMinutes int      `json:"total_time_minutes"`
	Servings         int      `json:"servings"`
	Ingredients      []string `json:"ingredients"`
	Instructions     []string `json:"instructions"`
}

// RecipeListResponse is a cursor page of recipes.
type RecipeListResponse struct {
	Items      []RecipeResponse `json:"items"`
	HasMore    bool             `json:"has_more"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

// RangeParam is an inclusive numeric bound pair; nil means unconstrained.
type RangeParam struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// FilterRequest carries the metadata post-filter of a search request.
type FilterRequest struct {
	Difficulty          string      `json:"difficulty,omitempty"`
	PrepTimeMinutes     *RangeParam `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes     *RangeParam `json:"cook_time_minutes,omitempty"`
	Servings            *RangeParam `json:"servings,omitempty"`
	MaxTotalTimeMinutes *int        `json:"max_total_time_minutes,omitempty"`
	DietaryRestrictions []string    `json:"dietary_restrictions,omitempty"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query        string         `json:"query"`
	Mode         string         `json:"mode,omitempty"`
	Limit        *int           `json:"limit,omitempty"`
	SparseWeight *float64       `json:"sparse_weight,omitempty"`
	DenseWeight  *float64       `json:"dense_weight,omitempty"`
	Filters      *FilterRequest `json:"filters,omitempty"`
}

// RecipeMetadata is the filterable snapshot attached to search results.
type RecipeMetadata struct {
	Title            string `json:"title"`
	Difficulty       string `json:"difficulty"`
	PrepTimeMinutes  *int   `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes  *int   `json:"cook_time_minutes,omitempty"`
	TotalTimeMinutes *int   `json:"total_time_minutes,omitempty"`
	Servings         *int   `json:"servings,omitempty"`
	IngredientCount  int    `json:"ingredient_count"`
	InstructionCount int    `json:"instruction_count"`
}

// SearchResultItem is one fused hit. Per-path scores and 1-based ranks are
// zero when the recipe did not appear in that path's list.
type SearchResultItem struct {
	ID            string          `json:"id"`
	CombinedScore float64         `json:"combined_score"`
	SparseScore   float64         `json:"sparse_score,omitempty"`
	DenseScore    float64         `json:"dense_score,omitempty"`
	SparseRank    int             `json:"sparse_rank,omitempty"`
	DenseRank     int             `json:"dense_rank,omitempty"`
	Metadata      *RecipeMetadata `json:"metadata,omitempty"`
}

// SearchResponse is the body of search and similar-recipes responses.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
	Limit int                `json:"limit"`
	Total int                `json:"total"`
}

// BatchRecipeItem is one recipe in a batch upsert. A missing ID is assigned
// by the server.
type BatchRecipeItem struct {
	ID              string   `json:"id,omitempty"`
	Title           string   `json:"title"`
	Difficulty      string   `json:"difficulty"`
	PrepTimeMinutes int      `json:"prep_time_minutes"`
	CookTimeMinutes int      `json:"cook_time_minutes"`
	Servings        int      `json:"servings"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
}

// BatchUpsertRequest is the body of POST /v1/recipes/batch.
type BatchUpsertRequest struct {
	Recipes []BatchRecipeItem `json:"recipes"`
}

// BatchDeleteRequest is the body of DELETE /v1/recipes/batch.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchResultItem is the outcome of one batch item.
type BatchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse summarizes a batch operation.
type BatchResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// RebuildResponse reports a completed index rebuild.
type RebuildResponse struct {
	Docs   int   `json:"docs"`
	Terms  int   `json:"terms"`
	TookMs int64 `json:"took_ms"`
}

// UsageMetrics is the consumption part of a usage report.
type UsageMetrics struct {
	EmbeddingRequests int  `json:"embedding_requests"`
	Tokens            int  `json:"tokens"`
	CostMillidollars  *int `json:"cost_millidollars,omitempty"`
}

// BudgetStatus is the budget part of a usage report.
type BudgetStatus struct {
	TokensLimit     int        `json:"tokens_limit"`
	TokensRemaining int        `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

// UsageResponse is the body of GET /v1/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the body of GET /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func recipeFromRequest(id string, req RecipeRequest) (domrec.Recipe, error) {
	rec, err := domrec.New(
		id, req.Title, domrec.Difficulty(req.Difficulty),
		req.PrepTimeMinutes, req.CookTimeMinutes, req.Servings,
		req.Ingredients, req.Instructions,
	)
	if err != nil {
		return domrec.Recipe{}, fmt.Errorf("build recipe: %w", err)
	}
	return rec, nil
}

func recipeToResponse(rec *domrec.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:               rec.ID(),
		Title:            rec.Title(),
		Difficulty:       string(rec.Difficulty()),
		PrepTimeMinutes:  rec.PrepTimeMinutes(),
		CookTimeMinutes:  rec.CookTimeMinutes(),
		TotalTimeMinutes: rec.TotalTimeMinutes(),
		Servings:         rec.Servings(),
		Ingredients:      rec.Ingredients(),
		Instructions:     rec.Instructions(),
	}
}

func batchItemToUpsert(item BatchRecipeItem) batchuc.UpsertItem {
	return batchuc.UpsertItem{
		ID:              item.ID,
		Title:           item.Title,
		Difficulty:      item.Difficulty,
		PrepTimeMinutes: item.PrepTimeMinutes,
		CookTimeMinutes: item.CookTimeMinutes,
		Servings:        item.Servings,
		Ingredients:     item.Ingredients,
		Instructions:    item.Instructions,
	}
}

func searchRequestFromDTO(req SearchRequest) (request.Request, error) {
	filters, err := filterFromDTO(req.Filters)
	if err != nil {
		return request.Request{}, err
	}

	nResults := request.DefaultNResults
	if req.Limit != nil {
		nResults = *req.Limit
	}

	r, err := request.New(
		req.Query, mode.Mode(req.Mode), filters,
		nResults, req.SparseWeight, req.DenseWeight,
	)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return r, nil
}

func filterFromDTO(f *FilterRequest) (filter.RecipeFilter, error) {
	if f == nil {
		return filter.RecipeFilter{}, nil
	}

	var prepMin, prepMax, cookMin, cookMax, servMin, servMax *int
	if f.PrepTimeMinutes != nil {
		prepMin, prepMax = f.PrepTimeMinutes.Min, f.PrepTimeMinutes.Max
	}
	if f.CookTimeMinutes != nil {
		cookMin, cookMax = f.CookTimeMinutes.Min, f.CookTimeMinutes.Max
	}
	if f.Servings != nil {
		servMin, servMax = f.Servings.Min, f.Servings.Max
	}

	flt, err := filter.New(
		domrec.Difficulty(f.Difficulty),
		prepMin, prepMax, cookMin, cookMax, servMin, servMax,
		f.DietaryRestrictions, f.MaxTotalTimeMinutes,
	)
	if err != nil {
		return filter.RecipeFilter{}, fmt.Errorf("parse filters: %w", err)
	}
	return flt, nil
}

func metadataToDTO(m domrec.Metadata) *RecipeMetadata {
	return &RecipeMetadata{
		Title:            m.Title,
		Difficulty:       string(m.Difficulty),
		PrepTimeMinutes:  m.PrepTimeMinutes,
		CookTimeMinutes:  m.CookTimeMinutes,
		TotalTimeMinutes: m.TotalTimeMinutes(),
		Servings:         m.Servings,
		IngredientCount:  m.IngredientCount,
		InstructionCount: m.InstructionCount,
	}
}

func searchResultToDTO(r *result.Fused) SearchResultItem {
	item := SearchResultItem{
		ID:            r.ID(),
		CombinedScore: r.CombinedScore(),
		SparseScore:   r.SparseScore(),
		DenseScore:    r.DenseScore(),
		SparseRank:    r.SparseRank(),
		DenseRank:     r.DenseRank(),
	}
	if r.HasMetadata() {
		item.Metadata = metadataToDTO(r.Metadata())
	}
	return item
}

func searchResultsToDTO(results []result.Fused) []SearchResultItem {
	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToDTO(&results[i])
	}
	return items
}
