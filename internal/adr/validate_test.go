package adr

import "testing"

func validDoc(status Status) *Document {
	return &Document{
		FrontMatter: FrontMatter{
			ID:     "ADR-0001",
			Title:  "T",
			Status: status,
			Date:   "2026-03-14",
		},
		Body: "## Decision\n\nX.\n",
	}
}

func hasRule(r ValidationResult, rule string, level IssueLevel) bool {
	for _, issue := range r.Issues {
		if issue.Rule == rule && issue.Level == level {
			return true
		}
	}
	return false
}

func TestValidate_CleanDocument(t *testing.T) {
	r := Validate(validDoc(StatusAccepted))
	if !r.Valid() {
		t.Errorf("clean document invalid: %v", r.Issues)
	}
	if len(r.Issues) != 0 {
		t.Errorf("clean document has issues: %v", r.Issues)
	}
}

func TestValidate_SupersededRequiresSupersededBy(t *testing.T) {
	doc := validDoc(StatusSuperseded)
	r := Validate(doc)
	if r.Valid() {
		t.Error("superseded without superseded_by passed validation")
	}
	if !hasRule(r, "superseded_requires_superseded_by", LevelError) {
		t.Errorf("missing expected rule, got %v", r.Issues)
	}

	doc.FrontMatter.SupersededBy = "ADR-0002"
	if r := Validate(doc); !r.Valid() {
		t.Errorf("superseded with superseded_by failed: %v", r.Issues)
	}
}

func TestValidate_NoSelfReference(t *testing.T) {
	doc := validDoc(StatusAccepted)
	doc.FrontMatter.Supersedes = []string{"ADR-0001"}
	if r := Validate(doc); !hasRule(r, "no_self_reference", LevelError) {
		t.Errorf("self-supersede not caught: %v", r.Issues)
	}

	doc = validDoc(StatusSuperseded)
	doc.FrontMatter.SupersededBy = "ADR-0001"
	if r := Validate(doc); !hasRule(r, "no_self_reference", LevelError) {
		t.Errorf("self-superseded_by not caught: %v", r.Issues)
	}
}

func TestValidate_ReferenceIDFormat(t *testing.T) {
	doc := validDoc(StatusAccepted)
	doc.FrontMatter.Supersedes = []string{"ADR-2"}
	if r := Validate(doc); !hasRule(r, "id_format", LevelError) {
		t.Errorf("malformed supersedes id not caught: %v", r.Issues)
	}

	doc = validDoc(StatusSuperseded)
	doc.FrontMatter.SupersededBy = "not-an-id"
	if r := Validate(doc); !hasRule(r, "id_format", LevelError) {
		t.Errorf("malformed superseded_by id not caught: %v", r.Issues)
	}
}

func TestValidate_ProposedNotSuperseded_IsWarning(t *testing.T) {
	doc := validDoc(StatusProposed)
	doc.FrontMatter.SupersededBy = "ADR-0002"
	r := Validate(doc)
	if !hasRule(r, "proposed_not_superseded", LevelWarning) {
		t.Errorf("missing warning, got %v", r.Issues)
	}
	// Warnings alone do not fail validation.
	if !r.Valid() {
		t.Error("warning-only result reported invalid")
	}
	if len(r.Errors()) != 0 {
		t.Errorf("Errors() = %v, want none", r.Errors())
	}
}
