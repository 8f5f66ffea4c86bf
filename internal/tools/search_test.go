package tools

import (
	"strings"
	"testing"

	"github.com/HendryAvila/decree/internal/index"
)

// newTestIndex builds a populated search index for the env's documents.
func newTestIndex(t *testing.T, env *testEnv) *index.Store {
	t.Helper()
	idx, err := index.New(index.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	docs, err := env.store.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	c, err := env.manager.Current()
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Rebuild(docs, c); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return idx
}

func TestSearchTool_Definition(t *testing.T) {
	def := NewSearchTool(nil).Definition()
	if def.Name != "adr_search" {
		t.Errorf("name = %q, want adr_search", def.Name)
	}
}

func TestSearchTool_Handle(t *testing.T) {
	env := newTestEnv(t)
	env.createApproved(t, "ADR-0001", "flask")
	idx := newTestIndex(t, env)

	tool := NewSearchTool(idx)
	result, err := tool.Handle(ctx, callRequest(map[string]interface{}{
		"query": "flask",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("error result: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "- **ADR-0001** Ban flask (accepted") {
		t.Errorf("result line missing:\n%s", text)
	}
}

func TestSearchTool_Handle_NoMatch(t *testing.T) {
	env := newTestEnv(t)
	env.createApproved(t, "ADR-0001", "flask")
	idx := newTestIndex(t, env)

	tool := NewSearchTool(idx)
	result, err := tool.Handle(ctx, callRequest(map[string]interface{}{
		"query": "kubernetes",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := getResultText(result); got != `No ADRs match "kubernetes".` {
		t.Errorf("result = %q", got)
	}
}

func TestSearchTool_Handle_NilIndex(t *testing.T) {
	tool := NewSearchTool(nil)
	result, err := tool.Handle(ctx, callRequest(map[string]interface{}{
		"query": "anything",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("nil index did not produce an error result")
	}
	if !strings.Contains(getResultText(result), "search index is unavailable") {
		t.Errorf("result = %s", getResultText(result))
	}
}

func TestSearchTool_Handle_MissingQuery(t *testing.T) {
	tool := NewSearchTool(nil)
	result, err := tool.Handle(ctx, callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("missing query did not produce an error result")
	}
}
