package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/filter"
	"github.com/umami-labs/recipedex/internal/domain/search/mode"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeRecipeNotFound    = -32001 // Recipe id is not in the store
	ErrorCodeEmptyQuery        = -32002 // Query parameter is empty
	ErrorCodeSearchUnavailable = -32003 // Both retrieval paths failed
	ErrorCodeQuotaExceeded     = -32004 // Embedding token budget exhausted
)

// handleSearchRecipes handles the search_recipes tool invocation.
func (s *Server) handleSearchRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	searchMode := mode.Mode(getStringDefault(args, "mode", string(mode.Hybrid)))
	if !searchMode.IsValid() {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
			"param":   "mode",
			"value":   string(searchMode),
			"allowed": []string{"hybrid", "sparse", "dense"},
		})
	}

	limit := getIntDefault(args, "limit", request.DefaultNResults)
	if limit < 1 || limit > request.MaxNResults {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("limit must be between 1 and %d", request.MaxNResults),
			map[string]interface{}{"param": "limit", "value": limit})
	}

	filters, err := filtersFromArgs(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid filters", map[string]interface{}{
			"param":  "filters",
			"reason": err.Error(),
		})
	}

	searchReq, err := request.New(query, searchMode, filters, limit,
		getFloatPtr(args, "sparse_weight"), getFloatPtr(args, "dense_weight"))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search request", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	results, err := s.searcher.Search(ctx, &searchReq)
	if err != nil {
		return nil, s.searchError(err)
	}

	items := make([]map[string]interface{}, 0, len(results))
	for i := range results {
		r := &results[i]
		item := map[string]interface{}{
			"id":             r.ID(),
			"combined_score": r.CombinedScore(),
		}
		if r.SparseRank() > 0 {
			item["sparse_score"] = r.SparseScore()
			item["sparse_rank"] = r.SparseRank()
		}
		if r.DenseRank() > 0 {
			item["dense_score"] = r.DenseScore()
			item["dense_rank"] = r.DenseRank()
		}
		if r.HasMetadata() {
			m := r.Metadata()
			item["metadata"] = map[string]interface{}{
				"title":              m.Title,
				"difficulty":         string(m.Difficulty),
				"prep_time_minutes":  m.PrepTimeMinutes,
				"cook_time_minutes":  m.CookTimeMinutes,
				"total_time_minutes": m.TotalTimeMinutes(),
				"servings":           m.Servings,
			}
		}
		items = append(items, item)
	}

	response := map[string]interface{}{
		"results": items,
		"total":   len(items),
	}
	if usage.Used {
		response["embedding_tokens"] = usage.TotalTokens
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetRecipe handles the get_recipe tool invocation.
func (s *Server) handleGetRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}

	rec, err := s.recipes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			return nil, newMCPError(ErrorCodeRecipeNotFound, "recipe not found", map[string]interface{}{
				"id": id,
			})
		}
		s.logger.Error("Get recipe failed", zap.String("id", id), zap.Error(err))
		return nil, newMCPError(ErrorCodeInternalError, "failed to load recipe", nil)
	}

	response := map[string]interface{}{
		"id":                 rec.ID(),
		"title":              rec.Title(),
		"difficulty":         string(rec.Difficulty()),
		"prep_time_minutes":  rec.PrepTimeMinutes(),
		"cook_time_minutes":  rec.CookTimeMinutes(),
		"total_time_minutes": rec.TotalTimeMinutes(),
		"servings":           rec.Servings(),
		"ingredients":        rec.Ingredients(),
		"instructions":       rec.Instructions(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRebuildIndex handles the rebuild_index tool invocation.
func (s *Server) handleRebuildIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.indexer.Rebuild(ctx)
	if err != nil {
		s.logger.Error("Index rebuild failed", zap.Error(err))
		return nil, newMCPError(ErrorCodeInternalError, "index rebuild failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"rebuilt": true,
		"docs":    stats.Docs,
		"terms":   stats.Terms,
		"took_ms": stats.Took.Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// searchError maps a search failure to the closest MCP error.
func (s *Server) searchError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidFilter):
		return newMCPError(ErrorCodeInvalidParams, "invalid search request", map[string]interface{}{
			"reason": err.Error(),
		})
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return newMCPError(ErrorCodeQuotaExceeded, "embedding token budget exhausted", nil)
	case errors.Is(err, domain.ErrSearchUnavailable):
		return newMCPError(ErrorCodeSearchUnavailable, "search temporarily unavailable", nil)
	default:
		s.logger.Error("Search failed", zap.Error(err))
		return newMCPError(ErrorCodeInternalError, "search failed", nil)
	}
}

// filtersFromArgs builds a recipe filter from the optional filters object.
func filtersFromArgs(args map[string]interface{}) (filter.RecipeFilter, error) {
	f, ok := args["filters"].(map[string]interface{})
	if !ok {
		return filter.RecipeFilter{}, nil
	}

	var dietary []string
	if raw, ok := f["dietary_restrictions"].([]interface{}); ok {
		for _, v := range raw {
			if tag, ok := v.(string); ok {
				dietary = append(dietary, tag)
			}
		}
	}

	return filter.New(
		domrec.Difficulty(getStringDefault(f, "difficulty", "")),
		nil, getIntPtr(f, "max_prep_time_minutes"),
		nil, getIntPtr(f, "max_cook_time_minutes"),
		getIntPtr(f, "min_servings"), getIntPtr(f, "max_servings"),
		dietary, getIntPtr(f, "max_total_time_minutes"),
	)
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getIntPtr extracts an optional integer parameter.
func getIntPtr(args map[string]interface{}, key string) *int {
	if val, ok := args[key].(float64); ok {
		n := int(val)
		return &n
	}
	if val, ok := args[key].(int); ok {
		return &val
	}
	return nil
}

// getFloatPtr extracts an optional number parameter.
func getFloatPtr(args map[string]interface{}, key string) *float64 {
	if val, ok := args[key].(float64); ok {
		return &val
	}
	return nil
}
