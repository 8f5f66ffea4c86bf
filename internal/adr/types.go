// Package adr defines the Architectural Decision Record document model:
// front-matter metadata, lifecycle status, the markdown body, and the
// content digest that seals a record at acceptance.
//
// This package follows the same design principles as the rest of decree:
// - SRP: types, parsing, validation, and persistence in separate files
// - DIP: Store is an interface; lifecycle and tools depend on the abstraction
// - Records are plain values — all mutation goes through the lifecycle package
package adr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// --- Status enum ---

// Status is the lifecycle state of an ADR, per the MADR convention.
type Status string

const (
	StatusProposed   Status = "proposed"
	StatusAccepted   Status = "accepted"
	StatusSuperseded Status = "superseded"
	StatusDeprecated Status = "deprecated"
)

// validStatuses is the set of allowed status values.
var validStatuses = map[Status]bool{
	StatusProposed:   true,
	StatusAccepted:   true,
	StatusSuperseded: true,
	StatusDeprecated: true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s Status) error {
	if !validStatuses[s] {
		return fmt.Errorf("invalid ADR status %q: must be one of: proposed, accepted, superseded, deprecated", s)
	}
	return nil
}

// --- Identifiers ---

// idPattern matches canonical ADR identifiers: "ADR-" plus a
// zero-padded four digit sequence number.
var idPattern = regexp.MustCompile(`^ADR-(\d{4})$`)

// FormatID renders a sequence number as a canonical ADR identifier.
func FormatID(n int) string {
	return fmt.Sprintf("ADR-%04d", n)
}

// ParseID extracts the sequence number from an ADR identifier.
func ParseID(id string) (int, error) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, fmt.Errorf("invalid ADR id %q: must match ADR-NNNN", id)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid ADR id %q: %w", id, err)
	}
	return n, nil
}

// --- Core data structures ---

// FrontMatter is the structured YAML header of an ADR file.
//
// Policy, when present, is the structured constraints block. It is kept
// as a raw map here so that document parsing never fails on a malformed
// policy — the policy package decodes and validates it separately and
// reports schema errors with remediation detail.
type FrontMatter struct {
	ID           string         `yaml:"id"`
	Title        string         `yaml:"title"`
	Status       Status         `yaml:"status"`
	Date         string         `yaml:"date"`
	Deciders     []string       `yaml:"deciders,omitempty"`
	Tags         []string       `yaml:"tags,omitempty"`
	Supersedes   []string       `yaml:"supersedes,omitempty"`
	SupersededBy string         `yaml:"superseded_by,omitempty"`
	Policy       map[string]any `yaml:"policy,omitempty"`
	Digest       string         `yaml:"digest,omitempty"`
}

// Document is a complete ADR: front-matter plus the markdown body.
type Document struct {
	FrontMatter FrontMatter
	Body        string
	// Path is where the document was loaded from, empty for new records.
	Path string
}

// ID returns the document's identifier.
func (d *Document) ID() string { return d.FrontMatter.ID }

// Title returns the document's title.
func (d *Document) Title() string { return d.FrontMatter.Title }

// Status returns the document's lifecycle status.
func (d *Document) Status() Status { return d.FrontMatter.Status }

// Section extracts a named markdown section ("Decision", "Consequences", ...)
// from the body. Returns empty string if the heading is absent.
func (d *Document) Section(name string) string {
	lines := strings.Split(d.Body, "\n")
	want := "## " + name
	var out []string
	collecting := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			if collecting {
				break
			}
			if strings.EqualFold(trimmed, want) {
				collecting = true
			}
			continue
		}
		if collecting {
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// --- Content digest ---

// Digest computes the SHA-256 hex digest of the document's normalized
// content. The digest field itself is excluded so that writing the digest
// back into the front-matter does not invalidate it. Assigned once at
// acceptance; any later mismatch means the record was edited after the
// decision was sealed.
func (d *Document) Digest() string {
	fm := d.FrontMatter
	fm.Digest = ""

	var sb strings.Builder
	sb.WriteString("id:" + fm.ID + "\n")
	sb.WriteString("title:" + fm.Title + "\n")
	sb.WriteString("status:" + string(fm.Status) + "\n")
	sb.WriteString("date:" + fm.Date + "\n")
	writeSortedList(&sb, "deciders", fm.Deciders)
	writeSortedList(&sb, "tags", fm.Tags)
	writeSortedList(&sb, "supersedes", fm.Supersedes)
	sb.WriteString("superseded_by:" + fm.SupersededBy + "\n")
	writeCanonicalMap(&sb, "policy", fm.Policy)
	sb.WriteString("body:" + strings.TrimSpace(d.Body) + "\n")

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Sealed reports whether the document carries a stored digest.
func (d *Document) Sealed() bool { return d.FrontMatter.Digest != "" }

// Tampered reports whether the stored digest no longer matches the
// recomputed one. Always false for unsealed documents.
func (d *Document) Tampered() bool {
	return d.Sealed() && d.FrontMatter.Digest != d.Digest()
}

// writeSortedList appends a deterministic rendering of a string list.
func writeSortedList(sb *strings.Builder, key string, values []string) {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	sb.WriteString(key + ":" + strings.Join(sorted, ",") + "\n")
}

// writeCanonicalMap appends a deterministic rendering of a nested map,
// keys sorted at every level.
func writeCanonicalMap(sb *strings.Builder, key string, m map[string]any) {
	sb.WriteString(key + ":")
	writeCanonicalValue(sb, m)
	sb.WriteString("\n")
}

func writeCanonicalValue(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(k + ":")
			writeCanonicalValue(sb, val[k])
		}
		sb.WriteString("}")
	case []any:
		sb.WriteString("[")
		for i, item := range val {
			if i > 0 {
				sb.WriteString(",")
			}
			writeCanonicalValue(sb, item)
		}
		sb.WriteString("]")
	default:
		fmt.Fprintf(sb, "%v", val)
	}
}
