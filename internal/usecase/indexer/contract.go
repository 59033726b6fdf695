package indexer

import (
	"context"

	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/index/bm25"
)

// Source yields the full recipe catalog for a rebuild.
type Source interface {
	All(ctx context.Context) ([]domrec.Recipe, error)
}

// Index is the keyword index lifecycle the rebuilder drives. Tokenization
// is split out so the rebuilder can spread it over a worker pool.
type Index interface {
	Tokenize(d bm25.Doc) []string
	BuildTokenized(docs []bm25.TokenizedDoc) error
	DocCount() int
	TermCount() int
}

// Invalidator drops cached search results after a snapshot swap.
type Invalidator interface {
	Purge()
}
