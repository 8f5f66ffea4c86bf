package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/contract"
	"github.com/HendryAvila/decree/internal/gate"
	"github.com/HendryAvila/decree/internal/lifecycle"
)

// --- Shared test helpers ---

// testEnv wires a manager, store, and gate over a temp project root.
type testEnv struct {
	root    string
	store   *adr.FileStore
	manager *lifecycle.Manager
	gate    *gate.Gate
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	store := adr.NewFileStore(filepath.Join(root, adr.DefaultDir))
	settings := adr.DefaultSettings()
	return &testEnv{
		root:    root,
		store:   store,
		manager: lifecycle.NewManager(store, contract.NewSnapshot(), settings, root, nil),
		gate:    gate.New(settings.Aliases, settings.ExemptCategories),
	}
}

// createApproved creates and approves an ADR banning the given import.
func (e *testEnv) createApproved(t *testing.T, id, banned string) {
	t.Helper()
	doc := adr.NewDocument(id, "Ban "+banned, "ctx", "Stop using "+banned+".", "cons", "", nil, nil)
	doc.FrontMatter.Policy = map[string]any{
		"imports": map[string]any{"disallow": []any{banned}},
	}
	if _, err := e.store.Create(doc); err != nil {
		t.Fatalf("Create %s: %v", id, err)
	}
	if _, err := e.manager.Approve(id); err != nil {
		t.Fatalf("Approve %s: %v", id, err)
	}
}

// callRequest builds a tool request with the given arguments.
func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks whether a tool result is an error result.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// ctx shorthand for handle calls.
var ctx = context.Background()
