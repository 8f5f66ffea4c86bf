// Package policy extracts machine-enforceable constraints from individual
// ADRs. Each accepted ADR contributes one Fragment; the contract package
// merges fragments into the repository-wide constraints contract.
//
// Extraction is two-tier: a structured `policy` block in the front-matter
// is authoritative when present; otherwise a fixed, ordered table of
// prose patterns infers rules from the Decision and Consequences sections.
package policy

import (
	"fmt"
	"sort"
	"strings"
)

// BoundaryRule is one directional layer constraint. Allow records an
// explicit permission, which only matters when another ADR forbids the
// same pair — deny wins, and the collision is surfaced as a conflict.
type BoundaryRule struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Allow bool   `json:"allow,omitempty"`
}

// Key returns the merge key for boundary deduplication.
func (b BoundaryRule) Key() string { return b.From + " -> " + b.To }

// Fragment is the set of rules one ADR asserts, before merging.
type Fragment struct {
	// SourceID is the contributing ADR's identifier.
	SourceID string `json:"source_id"`
	// ImportDisallow lists imports this ADR bans outright.
	ImportDisallow []string `json:"import_disallow,omitempty"`
	// ImportPrefer lists imports this ADR endorses.
	ImportPrefer []string `json:"import_prefer,omitempty"`
	// Ecosystems holds per-ecosystem disallow lists, keyed by a
	// lowercase ecosystem name ("python", "javascript").
	Ecosystems map[string][]string `json:"ecosystems,omitempty"`
	// Boundaries lists directional layer constraints.
	Boundaries []BoundaryRule `json:"boundaries,omitempty"`
	// Rationales carries free-text reasoning attached to the block.
	Rationales []string `json:"rationales,omitempty"`
}

// Empty reports whether the fragment contributes no rules at all.
// An empty fragment is not an error — the ADR simply has no
// enforceable policy.
func (f *Fragment) Empty() bool {
	return len(f.ImportDisallow) == 0 &&
		len(f.ImportPrefer) == 0 &&
		len(f.Ecosystems) == 0 &&
		len(f.Boundaries) == 0
}

// normalize sorts and dedupes every list so fragment content never
// depends on match or declaration order.
func (f *Fragment) normalize() {
	f.ImportDisallow = dedupeSorted(f.ImportDisallow)
	f.ImportPrefer = dedupeSorted(f.ImportPrefer)
	for eco, list := range f.Ecosystems {
		f.Ecosystems[eco] = dedupeSorted(list)
	}

	seen := make(map[string]bool, len(f.Boundaries))
	var rules []BoundaryRule
	for _, rule := range f.Boundaries {
		key := rule.Key()
		if rule.Allow {
			key = "allow " + key
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Key() < rules[j].Key() })
	f.Boundaries = rules
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// --- Schema error ---

// ExpectedSchema describes the structured policy block, returned inside
// MalformedPolicyError so callers can fix the block without consulting
// documentation.
const ExpectedSchema = `policy:
  imports:
    disallow: [<import name>, ...]
    prefer: [<import name>, ...]
  boundaries:
    - forbid: "<layer> -> <layer>"
    - allow: "<layer> -> <layer>"
  rationales: ["<free text>", ...]
  <ecosystem>:            # e.g. python, javascript
    disallow: [<import name>, ...]`

// MalformedPolicyError reports a structured policy block that is present
// but schema-invalid. The document itself stays valid — only its policy
// is unusable.
type MalformedPolicyError struct {
	ADRID  string
	Field  string
	Reason string
}

func (e *MalformedPolicyError) Error() string {
	return fmt.Sprintf("%s: malformed policy block at %q: %s\nexpected schema:\n%s",
		e.ADRID, e.Field, e.Reason, ExpectedSchema)
}

// --- Warnings ---

// Warning is a non-fatal extraction finding, surfaced to the caller
// while the build proceeds.
type Warning struct {
	ADRID   string
	Message string
}

func (w Warning) String() string { return w.ADRID + ": " + w.Message }

// NoPolicyWarning is emitted when neither tier yields a single rule.
func NoPolicyWarning(adrID string) Warning {
	return Warning{
		ADRID:   adrID,
		Message: "no extractable policy; contract will not reflect this decision",
	}
}

// ParseBoundaryExpr splits a "from -> to" expression into its layers.
func ParseBoundaryExpr(expr string) (from, to string, err error) {
	parts := strings.Split(expr, "->")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("boundary %q: want \"<layer> -> <layer>\"", expr)
	}
	from = strings.ToLower(strings.TrimSpace(parts[0]))
	to = strings.ToLower(strings.TrimSpace(parts[1]))
	if from == "" || to == "" {
		return "", "", fmt.Errorf("boundary %q: empty layer name", expr)
	}
	return from, to, nil
}
