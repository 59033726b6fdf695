package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchRecipesTool returns the tool definition for search_recipes.
func searchRecipesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_recipes",
		Description: "Search the recipe catalog with natural language or keyword queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (keyword + semantic), sparse (BM25 only), or dense (semantic only)",
					"enum":        []string{"hybrid", "sparse", "dense"},
					"default":     "hybrid",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"sparse_weight": map[string]interface{}{
					"type":        "number",
					"description": "Weight of the keyword ranking in hybrid fusion (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"dense_weight": map[string]interface{}{
					"type":        "number",
					"description": "Weight of the semantic ranking in hybrid fusion (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Optional metadata filters applied after ranking",
					"properties": map[string]interface{}{
						"difficulty": map[string]interface{}{
							"type":        "string",
							"description": "Required difficulty level",
							"enum":        []string{"Beginner", "Intermediate", "Advanced"},
						},
						"max_total_time_minutes": map[string]interface{}{
							"type":        "integer",
							"description": "Upper bound on prep + cook time in minutes",
							"minimum":     1,
						},
						"max_prep_time_minutes": map[string]interface{}{
							"type":        "integer",
							"description": "Upper bound on prep time in minutes",
							"minimum":     1,
						},
						"max_cook_time_minutes": map[string]interface{}{
							"type":        "integer",
							"description": "Upper bound on cook time in minutes",
							"minimum":     1,
						},
						"min_servings": map[string]interface{}{
							"type":        "integer",
							"description": "Minimum servings",
							"minimum":     1,
						},
						"max_servings": map[string]interface{}{
							"type":        "integer",
							"description": "Maximum servings",
							"minimum":     1,
						},
						"dietary_restrictions": map[string]interface{}{
							"type":        "array",
							"description": "Dietary tags every result must satisfy",
							"items": map[string]interface{}{
								"type": "string",
								"enum": []string{
									"vegetarian", "vegan", "gluten-free", "dairy-free",
									"low-carb", "keto", "paleo", "diabetic", "low-sodium",
								},
							},
						},
					},
				},
			},
			Required: []string{"query"},
		},
	}
}

// getRecipeTool returns the tool definition for get_recipe.
func getRecipeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_recipe",
		Description: "Fetch a stored recipe by id, including ingredients and instructions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Recipe identifier",
				},
			},
			Required: []string{"id"},
		},
	}
}

// rebuildIndexTool returns the tool definition for rebuild_index.
func rebuildIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rebuild_index",
		Description: "Rebuild the in-process keyword index from stored recipes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
