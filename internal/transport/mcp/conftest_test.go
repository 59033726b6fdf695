package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	indexeruc "github.com/umami-labs/recipedex/internal/usecase/indexer"
)

// --- Mocks ---

type mockSearcher struct {
	results []result.Fused
	err     error
	tokens  int
	calls   int
	lastReq *request.Request
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	m.calls++
	m.lastReq = req
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	return m.results, m.err
}

type mockRecipes struct {
	rec    domrec.Recipe
	err    error
	lastID string
}

func (m *mockRecipes) Get(_ context.Context, id string) (domrec.Recipe, error) {
	m.lastID = id
	if m.err != nil {
		return domrec.Recipe{}, m.err
	}
	return m.rec, nil
}

type mockRebuilder struct {
	stats indexeruc.Stats
	err   error
	calls int
}

func (m *mockRebuilder) Rebuild(_ context.Context) (indexeruc.Stats, error) {
	m.calls++
	return m.stats, m.err
}

type serverMocks struct {
	searcher *mockSearcher
	recipes  *mockRecipes
	indexer  *mockRebuilder
}

func newTestServer() (*Server, *serverMocks) {
	m := &serverMocks{
		searcher: &mockSearcher{},
		recipes:  &mockRecipes{},
		indexer:  &mockRebuilder{},
	}
	return NewServer(m.searcher, m.recipes, m.indexer, zap.NewNop()), m
}

// --- Fixtures ---

func makeRecipe(t *testing.T, id string) domrec.Recipe {
	t.Helper()
	rec, err := domrec.New(
		id, "Chicken Curry", domrec.Intermediate, 15, 30, 4,
		[]string{"chicken", "coconut milk", "curry paste"},
		[]string{"Brown the chicken.", "Simmer in sauce."},
	)
	if err != nil {
		t.Fatalf("make recipe: %v", err)
	}
	return rec
}

func fusedHit(id string, combined float64, sparseRank, denseRank int) result.Fused {
	return result.NewFused(id, combined, 1.4, 0.82, sparseRank, denseRank)
}

// --- Tool call helpers ---

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultJSON decodes the text payload of a tool result.
func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(tc.Text), &out); err != nil {
		t.Fatalf("decode tool result: %v\n%s", err, tc.Text)
	}
	return out
}

// mcpCode extracts the MCP error code or fails the test.
func mcpCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	mcpErr, ok := err.(*MCPError)
	if !ok {
		t.Fatalf("expected *MCPError, got %T: %v", err, err)
	}
	return mcpErr.Code
}
