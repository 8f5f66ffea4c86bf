package adr

import "fmt"

// --- Semantic validation ---
//
// Structural checks (required fields, id format, status enum) happen in
// Parse. Validation here covers the relationship rules that only make
// sense on a well-formed document.

// IssueLevel distinguishes hard errors from advisory warnings.
type IssueLevel string

const (
	LevelError   IssueLevel = "error"
	LevelWarning IssueLevel = "warning"
)

// Issue is one validation finding on a document.
type Issue struct {
	Level   IssueLevel
	Field   string
	Rule    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] field %q: %s (rule: %s)", i.Level, i.Field, i.Message, i.Rule)
}

// ValidationResult aggregates all findings for one document.
type ValidationResult struct {
	Issues []Issue
}

// Valid reports whether the document has no error-level issues.
// Warnings do not fail validation.
func (r ValidationResult) Valid() bool {
	for _, issue := range r.Issues {
		if issue.Level == LevelError {
			return false
		}
	}
	return true
}

// Errors returns only the error-level issues.
func (r ValidationResult) Errors() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Level == LevelError {
			out = append(out, issue)
		}
	}
	return out
}

// Validate applies the semantic relationship rules to a document.
func Validate(doc *Document) ValidationResult {
	var issues []Issue
	fm := doc.FrontMatter

	// Superseded records must point at their successor.
	if fm.Status == StatusSuperseded && fm.SupersededBy == "" {
		issues = append(issues, Issue{
			Level:   LevelError,
			Field:   "superseded_by",
			Rule:    "superseded_requires_superseded_by",
			Message: "ADRs with status 'superseded' must specify 'superseded_by'",
		})
	}

	// No self-references in either direction.
	for _, target := range fm.Supersedes {
		if target == fm.ID {
			issues = append(issues, Issue{
				Level:   LevelError,
				Field:   "supersedes",
				Rule:    "no_self_reference",
				Message: "ADR cannot supersede itself",
			})
		}
	}
	if fm.SupersededBy == fm.ID && fm.SupersededBy != "" {
		issues = append(issues, Issue{
			Level:   LevelError,
			Field:   "superseded_by",
			Rule:    "no_self_reference",
			Message: "ADR cannot be superseded by itself",
		})
	}

	// Referenced identifiers must be well-formed.
	for _, target := range fm.Supersedes {
		if _, err := ParseID(target); err != nil {
			issues = append(issues, Issue{
				Level:   LevelError,
				Field:   "supersedes",
				Rule:    "id_format",
				Message: err.Error(),
			})
		}
	}
	if fm.SupersededBy != "" {
		if _, err := ParseID(fm.SupersededBy); err != nil {
			issues = append(issues, Issue{
				Level:   LevelError,
				Field:   "superseded_by",
				Rule:    "id_format",
				Message: err.Error(),
			})
		}
	}

	// A proposal has not been decided, so nothing can have replaced it yet.
	if fm.Status == StatusProposed && fm.SupersededBy != "" {
		issues = append(issues, Issue{
			Level:   LevelWarning,
			Field:   "superseded_by",
			Rule:    "proposed_not_superseded",
			Message: "proposed ADRs should not have 'superseded_by'",
		})
	}

	return ValidationResult{Issues: issues}
}
