package policy

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/decree/internal/adr"
)

// Extract derives the policy fragment for one ADR.
//
// Tier 1: a structured front-matter policy block is authoritative and
// skips prose inference entirely. A malformed block fails extraction
// with MalformedPolicyError (the ADR stays valid as a document).
//
// Tier 2: with no block present, the decision/consequences prose is
// scanned with the fixed pattern table in patterns.go.
//
// When neither tier yields a rule the fragment is empty and a warning
// is returned; the caller proceeds treating the ADR as policy-free.
func Extract(doc *adr.Document) (*Fragment, []Warning, error) {
	if doc.FrontMatter.Policy != nil {
		frag, err := decodeBlock(doc.ID(), doc.FrontMatter.Policy)
		if err != nil {
			return nil, nil, err
		}
		frag.normalize()
		if frag.Empty() {
			return frag, []Warning{NoPolicyWarning(doc.ID())}, nil
		}
		return frag, nil, nil
	}

	frag := inferFromProse(doc)
	frag.normalize()
	if frag.Empty() {
		return frag, []Warning{NoPolicyWarning(doc.ID())}, nil
	}
	return frag, nil, nil
}

// --- Tier 1: structured block ---

// decodeBlock converts the raw front-matter policy map into a Fragment,
// type-checking every field. Unknown top-level keys other than the
// reserved ones are treated as ecosystem sections.
func decodeBlock(adrID string, block map[string]any) (*Fragment, error) {
	frag := &Fragment{SourceID: adrID}

	for key, value := range block {
		switch key {
		case "imports":
			section, err := asSection(adrID, "imports", value)
			if err != nil {
				return nil, err
			}
			for field, raw := range section {
				list, err := asStringList(adrID, "imports."+field, raw)
				if err != nil {
					return nil, err
				}
				switch field {
				case "disallow":
					frag.ImportDisallow = lowercase(list)
				case "prefer":
					frag.ImportPrefer = lowercase(list)
				default:
					return nil, &MalformedPolicyError{
						ADRID:  adrID,
						Field:  "imports." + field,
						Reason: "unknown field: want 'disallow' or 'prefer'",
					}
				}
			}

		case "boundaries":
			rules, err := asBoundaryList(adrID, value)
			if err != nil {
				return nil, err
			}
			frag.Boundaries = rules

		case "rationales":
			list, err := asStringList(adrID, "rationales", value)
			if err != nil {
				return nil, err
			}
			frag.Rationales = list

		default:
			// Ecosystem section: {disallow: [...]}.
			section, err := asSection(adrID, key, value)
			if err != nil {
				return nil, err
			}
			raw, ok := section["disallow"]
			if !ok || len(section) != 1 {
				return nil, &MalformedPolicyError{
					ADRID:  adrID,
					Field:  key,
					Reason: "ecosystem section must contain exactly one field 'disallow'",
				}
			}
			list, err := asStringList(adrID, key+".disallow", raw)
			if err != nil {
				return nil, err
			}
			if frag.Ecosystems == nil {
				frag.Ecosystems = make(map[string][]string)
			}
			frag.Ecosystems[strings.ToLower(key)] = lowercase(list)
		}
	}

	return frag, nil
}

func asSection(adrID, field string, v any) (map[string]any, error) {
	section, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedPolicyError{
			ADRID:  adrID,
			Field:  field,
			Reason: fmt.Sprintf("want a mapping, got %T", v),
		}
	}
	return section, nil
}

func asStringList(adrID, field string, v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &MalformedPolicyError{
			ADRID:  adrID,
			Field:  field,
			Reason: fmt.Sprintf("want a list of strings, got %T", v),
		}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &MalformedPolicyError{
				ADRID:  adrID,
				Field:  fmt.Sprintf("%s[%d]", field, i),
				Reason: fmt.Sprintf("want a string, got %T", item),
			}
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}

func asBoundaryList(adrID string, v any) ([]BoundaryRule, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &MalformedPolicyError{
			ADRID:  adrID,
			Field:  "boundaries",
			Reason: fmt.Sprintf("want a list, got %T", v),
		}
	}

	var rules []BoundaryRule
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok || len(entry) != 1 {
			return nil, &MalformedPolicyError{
				ADRID:  adrID,
				Field:  fmt.Sprintf("boundaries[%d]", i),
				Reason: "want a single-key mapping: forbid or allow",
			}
		}
		for verb, raw := range entry {
			expr, ok := raw.(string)
			if !ok {
				return nil, &MalformedPolicyError{
					ADRID:  adrID,
					Field:  fmt.Sprintf("boundaries[%d].%s", i, verb),
					Reason: fmt.Sprintf("want a string, got %T", raw),
				}
			}
			from, to, err := ParseBoundaryExpr(expr)
			if err != nil {
				return nil, &MalformedPolicyError{
					ADRID:  adrID,
					Field:  fmt.Sprintf("boundaries[%d].%s", i, verb),
					Reason: err.Error(),
				}
			}
			switch verb {
			case "forbid":
				rules = append(rules, BoundaryRule{From: from, To: to})
			case "allow":
				rules = append(rules, BoundaryRule{From: from, To: to, Allow: true})
			default:
				return nil, &MalformedPolicyError{
					ADRID:  adrID,
					Field:  fmt.Sprintf("boundaries[%d]", i),
					Reason: fmt.Sprintf("unknown verb %q: want forbid or allow", verb),
				}
			}
		}
	}
	return rules, nil
}

func lowercase(list []string) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = strings.ToLower(v)
	}
	return out
}

// --- Tier 2: prose inference ---

// inferFromProse applies the pattern table to the sections that state
// the decision. The title participates too — "Replace moment with
// date-fns" as a title is a complete rule on its own.
func inferFromProse(doc *adr.Document) *Fragment {
	frag := &Fragment{SourceID: doc.ID()}

	prose := strings.Join([]string{
		doc.Title(),
		doc.Section("Decision"),
		doc.Section("Consequences"),
	}, "\n")

	for _, pat := range patternTable {
		for _, match := range pat.re.FindAllStringSubmatch(prose, -1) {
			pat.apply(frag, match)
		}
	}
	return frag
}
