package tools

import (
	"strings"
	"testing"

	"github.com/HendryAvila/decree/internal/adr"
)

func TestSupersedeTool_Definition(t *testing.T) {
	env := newTestEnv(t)
	def := NewSupersedeTool(env.store, env.manager).Definition()
	if def.Name != "adr_supersede" {
		t.Errorf("name = %q, want adr_supersede", def.Name)
	}
}

func supersedeArgs(oldID string) map[string]interface{} {
	return map[string]interface{}{
		"old_adr_id":   oldID,
		"title":        "Adopt fastapi",
		"context":      "Flask no longer fits.",
		"decision":     "Use fastapi for new services.",
		"consequences": "Migration effort.",
	}
}

func TestSupersedeTool_Handle_CreatesProposal(t *testing.T) {
	env := newTestEnv(t)
	env.createApproved(t, "ADR-0001", "flask")

	tool := NewSupersedeTool(env.store, env.manager)
	result, err := tool.Handle(ctx, callRequest(supersedeArgs("ADR-0001")))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("error result: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "# Supersede: ADR-0001 -> ADR-0002") {
		t.Errorf("header missing:\n%s", text)
	}
	if !strings.Contains(text, "stays accepted until the replacement is approved") {
		t.Errorf("pending note missing:\n%s", text)
	}

	// Without auto_approve the old record is untouched and the
	// replacement sits as a linked proposal.
	old, err := env.store.Load("ADR-0001")
	if err != nil {
		t.Fatal(err)
	}
	if old.Status() != adr.StatusAccepted {
		t.Errorf("old status = %q, want accepted", old.Status())
	}
	replacement, err := env.store.Load("ADR-0002")
	if err != nil {
		t.Fatal(err)
	}
	if replacement.Status() != adr.StatusProposed {
		t.Errorf("replacement status = %q, want proposed", replacement.Status())
	}
	if len(replacement.FrontMatter.Supersedes) != 1 || replacement.FrontMatter.Supersedes[0] != "ADR-0001" {
		t.Errorf("supersedes link = %v", replacement.FrontMatter.Supersedes)
	}
}

func TestSupersedeTool_Handle_AutoApprove(t *testing.T) {
	env := newTestEnv(t)
	env.createApproved(t, "ADR-0001", "flask")

	tool := NewSupersedeTool(env.store, env.manager)
	args := supersedeArgs("ADR-0001")
	args["auto_approve"] = true

	result, err := tool.Handle(ctx, callRequest(args))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("error result: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "ADR-0001 is now superseded by ADR-0002") {
		t.Errorf("result = %s", getResultText(result))
	}

	old, err := env.store.Load("ADR-0001")
	if err != nil {
		t.Fatal(err)
	}
	if old.Status() != adr.StatusSuperseded {
		t.Errorf("old status = %q, want superseded", old.Status())
	}
	if old.FrontMatter.SupersededBy != "ADR-0002" {
		t.Errorf("superseded_by = %q, want ADR-0002", old.FrontMatter.SupersededBy)
	}
}

func TestSupersedeTool_Handle_RejectsNonAccepted(t *testing.T) {
	env := newTestEnv(t)
	doc := adr.NewDocument("ADR-0001", "Idea", "c", "d", "q", "", nil, nil)
	if _, err := env.store.Create(doc); err != nil {
		t.Fatal(err)
	}

	tool := NewSupersedeTool(env.store, env.manager)
	result, err := tool.Handle(ctx, callRequest(supersedeArgs("ADR-0001")))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("superseding a proposal did not produce an error result")
	}
	if !strings.Contains(getResultText(result), "only accepted ADRs can be superseded") {
		t.Errorf("result = %s", getResultText(result))
	}
	// The pre-check fires before any replacement is written.
	if _, err := env.store.Load("ADR-0002"); err == nil {
		t.Error("replacement was created despite the rejected pre-check")
	}
}

func TestSupersedeTool_Handle_MissingOldID(t *testing.T) {
	env := newTestEnv(t)
	tool := NewSupersedeTool(env.store, env.manager)

	args := supersedeArgs("")
	result, err := tool.Handle(ctx, callRequest(args))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("missing old_adr_id did not produce an error result")
	}
}
