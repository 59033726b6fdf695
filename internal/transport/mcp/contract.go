package mcp

import (
	"context"

	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	indexeruc "github.com/umami-labs/recipedex/internal/usecase/indexer"
)

// Searcher runs recipe searches.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Fused, error)
}

// RecipeGetter loads stored recipes.
type RecipeGetter interface {
	Get(ctx context.Context, id string) (domrec.Recipe, error)
}

// Rebuilder rebuilds the keyword index.
type Rebuilder interface {
	Rebuild(ctx context.Context) (indexeruc.Stats, error)
}
