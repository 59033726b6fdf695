// Package recipe implements recipe CRUD with automatic vectorization.
package recipe

import (
	"context"
	"fmt"

	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
)

// Service handles recipe CRUD with automatic vectorization. Every write
// marks the keyword index stale so the rebuilder can pick it up.
type Service struct {
	repo            Repository
	embedder        Embedder
	marker          StaleMarker
	vectorDim       int
	defaultPageSize int
	maxPageSize     int
}

// New creates a recipe service. A nil marker disables staleness
// notifications; vectorDim 0 disables the dimension check.
func New(repo Repository, embedder Embedder, marker StaleMarker, vectorDim int) *Service {
	return &Service{
		repo:            repo,
		embedder:        embedder,
		marker:          marker,
		vectorDim:       vectorDim,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert creates or updates a recipe with automatic vectorization.
// Returns true if the recipe was created, false if updated.
func (s *Service) Upsert(ctx context.Context, rec *domrec.Recipe) (bool, error) {
	result, err := s.embedder.Embed(ctx, rec.EmbeddingText())
	if err != nil {
		return false, fmt.Errorf("vectorize recipe: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	if s.vectorDim > 0 && len(result.Embedding) != s.vectorDim {
		return false, fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(result.Embedding), s.vectorDim, domain.ErrVectorDimMismatch,
		)
	}

	stored := rec.WithVector(result.Embedding)
	created, err := s.repo.Upsert(ctx, &stored)
	if err != nil {
		return false, fmt.Errorf("upsert recipe: %w", err)
	}

	s.markStale()
	return created, nil
}

// Get retrieves a recipe by ID.
func (s *Service) Get(ctx context.Context, id string) (domrec.Recipe, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domrec.Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	return rec, nil
}

// List returns a paginated list of recipes.
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]domrec.Recipe, string, error) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	recs, nextCursor, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list recipes: %w", err)
	}
	return recs, nextCursor, nil
}

// Delete removes a recipe.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	s.markStale()
	return nil
}

// Count returns the number of stored recipes.
func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return count, nil
}

func (s *Service) markStale() {
	if s.marker != nil {
		s.marker.MarkStale()
	}
}
