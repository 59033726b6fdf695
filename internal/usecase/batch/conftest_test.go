package batch

import (
	"context"

	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
)

// --- Mocks ---

type mockBulk struct {
	err      error
	calls    int
	lastRecs []*domrec.Recipe
}

func (m *mockBulk) UpsertMulti(_ context.Context, recs []*domrec.Recipe) error {
	m.calls++
	m.lastRecs = recs
	return m.err
}

type mockDeleter struct {
	errs    map[string]error
	deleted []string
}

func (m *mockDeleter) Delete(_ context.Context, id string) error {
	if err, ok := m.errs[id]; ok {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockBatchEmbedder struct {
	dim       int
	tokens    int
	err       error
	calls     int
	lastTexts []string

	// override: когда non-nil, отдаётся как есть вместо генерации по dim.
	override *domain.BatchEmbeddingResult
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	m.lastTexts = texts
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	if m.override != nil {
		return *m.override, nil
	}
	dim := m.dim
	if dim == 0 {
		dim = 3
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = float32(i + 1)
		}
		embeddings[i] = vec
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: m.tokens}, nil
}

type mockMarker struct {
	calls int
}

func (m *mockMarker) MarkStale() { m.calls++ }

// --- Helpers ---

func makeItem(id string) UpsertItem {
	return UpsertItem{
		ID:              id,
		Title:           "Pad Thai",
		Difficulty:      "Intermediate",
		PrepTimeMinutes: 20,
		CookTimeMinutes: 15,
		Servings:        2,
		Ingredients:     []string{"rice noodles", "tamarind paste"},
		Instructions:    []string{"Soak noodles.", "Stir-fry everything."},
	}
}
