// Package batch implements multi-recipe operations with per-item outcomes.
package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/umami-labs/recipedex/internal/domain"
	dombatch "github.com/umami-labs/recipedex/internal/domain/batch"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// UpsertItem is one batch element before domain validation. An empty ID
// gets a generated UUID.
type UpsertItem struct {
	ID              string
	Title           string
	Difficulty      string
	PrepTimeMinutes int
	CookTimeMinutes int
	Servings        int
	Ingredients     []string
	Instructions    []string
}

// Service handles batch recipe operations with per-item error reporting.
type Service struct {
	repo         BulkUpserter
	del          Deleter
	embed        BatchEmbedder
	marker       StaleMarker
	vectorDim    int
	maxBatchSize int
}

// New creates a batch service. A nil marker disables staleness
// notifications; vectorDim 0 disables the dimension check.
func New(repo BulkUpserter, del Deleter, embed BatchEmbedder, marker StaleMarker, vectorDim int) *Service {
	return &Service{
		repo: repo, del: del, embed: embed,
		marker: marker, vectorDim: vectorDim,
		maxBatchSize: MaxBatchSize,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert validates, vectorizes and stores recipes in batch. Valid items
// share one embedding call and one pipelined write; validation failures
// stay per-item and never block the rest of the batch.
func (s *Service) Upsert(ctx context.Context, items []UpsertItem) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i, item := range items {
			results[i] = dombatch.NewError(
				item.ID,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidRequest),
			)
		}
		return results
	}

	valid := make([]domrec.Recipe, 0, len(items))
	validIdx := make([]int, 0, len(items))

	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
			items[i].ID = item.ID
		}
		rec, err := domrec.New(
			item.ID, item.Title, domrec.Difficulty(item.Difficulty),
			item.PrepTimeMinutes, item.CookTimeMinutes, item.Servings,
			item.Ingredients, item.Instructions,
		)
		if err != nil {
			results[i] = dombatch.NewError(item.ID, fmt.Errorf("%v: %w", err, domain.ErrInvalidRecipe))
			continue
		}
		valid = append(valid, rec)
		validIdx = append(validIdx, i)
	}

	if len(valid) == 0 {
		return results
	}

	texts := make([]string, len(valid))
	for j := range valid {
		texts[j] = valid[j].EmbeddingText()
	}

	embRes, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		for _, i := range validIdx {
			results[i] = dombatch.NewError(items[i].ID, fmt.Errorf("vectorize: %w", err))
		}
		return results
	}
	domain.UsageFromContext(ctx).AddTokens(embRes.TotalTokens)

	if len(embRes.Embeddings) != len(valid) {
		countErr := fmt.Errorf(
			"embedding count mismatch: got %d, want %d: %w",
			len(embRes.Embeddings), len(valid), domain.ErrEmbeddingProviderError,
		)
		for _, i := range validIdx {
			results[i] = dombatch.NewError(items[i].ID, countErr)
		}
		return results
	}

	stored := make([]*domrec.Recipe, 0, len(valid))
	storedIdx := make([]int, 0, len(valid))
	for j := range valid {
		vec := embRes.Embeddings[j]
		if s.vectorDim > 0 && len(vec) != s.vectorDim {
			results[validIdx[j]] = dombatch.NewError(items[validIdx[j]].ID, fmt.Errorf(
				"vector dimension mismatch: got %d, want %d: %w",
				len(vec), s.vectorDim, domain.ErrVectorDimMismatch,
			))
			continue
		}
		rec := valid[j].WithVector(vec)
		stored = append(stored, &rec)
		storedIdx = append(storedIdx, validIdx[j])
	}

	if len(stored) == 0 {
		return results
	}

	if err := s.repo.UpsertMulti(ctx, stored); err != nil {
		for _, i := range storedIdx {
			results[i] = dombatch.NewError(items[i].ID, fmt.Errorf("batch upsert: %w", err))
		}
		return results
	}

	for _, i := range storedIdx {
		results[i] = dombatch.NewOK(items[i].ID)
	}
	s.markStale()
	return results
}

// Delete removes recipes by ID in batch.
func (s *Service) Delete(ctx context.Context, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		for i, id := range ids {
			results[i] = dombatch.NewError(
				id,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidRequest),
			)
		}
		return results
	}

	deleted := false
	for i, id := range ids {
		if err := s.del.Delete(ctx, id); err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("delete: %w", err))
			continue
		}
		deleted = true
		results[i] = dombatch.NewOK(id)
	}

	if deleted {
		s.markStale()
	}
	return results
}

func (s *Service) markStale() {
	if s.marker != nil {
		s.marker.MarkStale()
	}
}
