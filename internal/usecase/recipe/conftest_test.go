package recipe

import (
	"context"
	"testing"

	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
)

// --- Mocks ---

type mockRepo struct {
	upsertCreated bool
	upsertErr     error
	upsertCalls   int
	lastUpserted  *domrec.Recipe

	getRec domrec.Recipe
	getErr error

	listRecs   []domrec.Recipe
	listNext   string
	listErr    error
	lastCursor string
	lastLimit  int

	delErr   error
	delCalls int
	lastDel  string

	countN   int
	countErr error
}

func (m *mockRepo) Upsert(_ context.Context, rec *domrec.Recipe) (bool, error) {
	m.upsertCalls++
	m.lastUpserted = rec
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	return m.upsertCreated, nil
}

func (m *mockRepo) Get(_ context.Context, _ string) (domrec.Recipe, error) {
	if m.getErr != nil {
		return domrec.Recipe{}, m.getErr
	}
	return m.getRec, nil
}

func (m *mockRepo) List(_ context.Context, cursor string, limit int) ([]domrec.Recipe, string, error) {
	m.lastCursor = cursor
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, "", m.listErr
	}
	return m.listRecs, m.listNext, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.delCalls++
	m.lastDel = id
	return m.delErr
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.countN, nil
}

type mockEmbedder struct {
	vec      []float32
	tokens   int
	err      error
	calls    int
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastText = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	vec := m.vec
	if vec == nil {
		vec = []float32{0.1, 0.2, 0.3}
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: m.tokens}, nil
}

type mockMarker struct {
	calls int
}

func (m *mockMarker) MarkStale() { m.calls++ }

// --- Helpers ---

func makeRecipe(t *testing.T, id string) domrec.Recipe {
	t.Helper()
	rec, err := domrec.New(
		id, "Chicken Curry", domrec.Intermediate, 15, 30, 4,
		[]string{"chicken", "curry paste", "coconut milk"},
		[]string{"Fry the paste.", "Simmer the chicken."},
	)
	if err != nil {
		t.Fatalf("makeRecipe: %v", err)
	}
	return rec
}
