// Package dense runs vector similarity retrieval against the recipe index.
package dense

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/umami-labs/recipedex/internal/db"
	"github.com/umami-labs/recipedex/internal/domain"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
)

// scoreField is the distance field FT.SEARCH emits for the vector alias.
const scoreField = "__vector_score"

// Engine defaults for the HNSW graph; overridable via WithHNSWParams.
const (
	defaultHNSWM       = 16
	defaultEFConstruct = 200
)

// store is the consumer interface for vector search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, index string) error
	IndexExists(ctx context.Context, index string) (bool, error)
}

// Repo implements dense retrieval over the vector index.
type Repo struct {
	store       store
	dim         int
	hnswM       int
	efConstruct int
}

// New creates a dense retrieval repository. dim is the embedding dimension
// the index is built with.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim, hnswM: defaultHNSWM, efConstruct: defaultEFConstruct}
}

// WithHNSWParams overrides the HNSW graph parameters used when the index is
// (re)created. An existing index keeps the parameters it was built with.
func (r *Repo) WithHNSWParams(m, efConstruct int) *Repo {
	if m > 0 {
		r.hnswM = m
	}
	if efConstruct > 0 {
		r.efConstruct = efConstruct
	}
	return r
}

// Search returns the topK nearest recipes by cosine similarity. Scores are
// similarities in [0,1]; thresholding is the caller's concern.
func (r *Repo) Search(ctx context.Context, vector []float32, topK int) ([]result.Dense, error) {
	if r.dim > 0 && len(vector) != r.dim {
		return nil, fmt.Errorf("query vector has %d dims, index has %d: %w",
			len(vector), r.dim, domain.ErrVectorDimMismatch)
	}

	q := &db.KNNQuery{
		IndexName:    indexName(),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{scoreField},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	hits := make([]result.Dense, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, keyPrefix())
		hits = append(hits, result.NewDense(id, entry.Score))
	}
	return hits, nil
}

// EnsureIndex creates the recipe vector index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, r.recipeIndex()); err != nil {
		// Lost a create race with another instance.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// RecreateIndex drops and recreates the recipe index. Used when the
// embedding dimension changes; the engine re-indexes existing documents
// in the background.
func (r *Repo) RecreateIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, r.recipeIndex()); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// recipeIndex defines the FT schema over recipe JSON documents. No TEXT
// field: keyword scoring happens in-process, so the schema stays portable
// across redisearch and valkey-search.
func (r *Repo) recipeIndex() *db.IndexDefinition {
	return db.NewIndex(indexName()).
		OnJSON().
		Prefix(keyPrefix()).
		Tag("$.difficulty").As("difficulty").
		Numeric("$.prep_time_minutes").As("prep_time_minutes").
		Numeric("$.cook_time_minutes").As("cook_time_minutes").
		Numeric("$.servings").As("servings").
		VectorHNSW("$.vector", r.dim, db.DistanceCosine, r.hnswM, r.efConstruct).As("vector").
		MustBuild()
}

func indexName() string {
	return fmt.Sprintf("%srecipe:idx", domain.KeyPrefix)
}

func keyPrefix() string {
	return fmt.Sprintf("%srecipe:", domain.KeyPrefix)
}
