package tools

import (
	"strings"
	"testing"

	"github.com/HendryAvila/decree/internal/adr"
)

func TestDeprecateTool_Definition(t *testing.T) {
	env := newTestEnv(t)
	def := NewDeprecateTool(env.manager).Definition()
	if def.Name != "adr_deprecate" {
		t.Errorf("name = %q, want adr_deprecate", def.Name)
	}
}

func TestDeprecateTool_Handle(t *testing.T) {
	env := newTestEnv(t)
	env.createApproved(t, "ADR-0001", "flask")

	tool := NewDeprecateTool(env.manager)
	result, err := tool.Handle(ctx, callRequest(map[string]interface{}{
		"adr_id": "ADR-0001",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("error result: %s", getResultText(result))
	}

	loaded, err := env.store.Load("ADR-0001")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status() != adr.StatusDeprecated {
		t.Errorf("Status = %q, want deprecated", loaded.Status())
	}
	// Retiring an accepted ADR rebuilds the contract.
	if !strings.Contains(getResultText(result), "Hash") {
		t.Errorf("rebuild summary missing:\n%s", getResultText(result))
	}
}

func TestDeprecateTool_Handle_ProposalSkipsRebuild(t *testing.T) {
	env := newTestEnv(t)
	doc := adr.NewDocument("ADR-0001", "Idea", "c", "d", "q", "", nil, nil)
	if _, err := env.store.Create(doc); err != nil {
		t.Fatal(err)
	}

	tool := NewDeprecateTool(env.manager)
	result, err := tool.Handle(ctx, callRequest(map[string]interface{}{
		"adr_id": "ADR-0001",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(getResultText(result), "no rebuild was needed") {
		t.Errorf("result = %s", getResultText(result))
	}
}

func TestDeprecateTool_Handle_MissingID(t *testing.T) {
	env := newTestEnv(t)
	tool := NewDeprecateTool(env.manager)

	result, err := tool.Handle(ctx, callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("missing adr_id did not produce an error result")
	}
}
