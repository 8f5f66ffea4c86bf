// Package guardrail projects the constraints contract into generated
// lint-tool configuration files.
//
// Every target file has a tool-owned region between fixed marker lines;
// projection only ever rewrites the content strictly inside the markers.
// Anything a human wrote outside the region is never touched, and
// re-projecting an unchanged contract produces byte-identical files.
package guardrail

import (
	"fmt"
	"strings"
)

// Marker tokens. The begin marker carries the originating contract hash
// so consumers (and the projector itself) can detect staleness without
// parsing the region body.
const (
	beginToken = "decree:guardrails:begin"
	endToken   = "decree:guardrails:end"
)

// MissingRegionError reports a target file that exists but has no owned
// region. The projector refuses to guess where to write — the file may
// be entirely human-authored.
type MissingRegionError struct {
	Path   string
	Marker string
}

func (e *MissingRegionError) Error() string {
	return fmt.Sprintf(
		"%s: owned-region markers not found (expected a line containing %q); "+
			"add the marker pair or remove the file and re-run projection",
		e.Path, e.Marker)
}

// region is a parsed target file: the human-owned text before and after
// the markers, plus the hash recorded on the begin line.
type region struct {
	before string // everything above the begin marker line
	after  string // everything below the end marker line
	hash   string
	indent string // leading whitespace of the begin marker line
}

// splitRegion locates the owned region in an existing file. The marker
// lines are matched by token, not byte-exact, so the recorded hash and
// surrounding comment syntax may vary.
func splitRegion(path, content string) (*region, error) {
	lines := strings.SplitAfter(content, "\n")

	beginIdx, endIdx := -1, -1
	for i, line := range lines {
		if beginIdx < 0 && strings.Contains(line, beginToken) {
			beginIdx = i
			continue
		}
		if beginIdx >= 0 && strings.Contains(line, endToken) {
			endIdx = i
			break
		}
	}
	if beginIdx < 0 || endIdx < 0 {
		return nil, &MissingRegionError{Path: path, Marker: beginToken}
	}

	beginLine := lines[beginIdx]
	return &region{
		before: strings.Join(lines[:beginIdx], ""),
		after:  strings.Join(lines[endIdx+1:], ""),
		hash:   parseHash(beginLine),
		indent: beginLine[:len(beginLine)-len(strings.TrimLeft(beginLine, " \t"))],
	}, nil
}

// parseHash extracts the hash=<value> token from a begin marker line.
func parseHash(line string) string {
	idx := strings.Index(line, "hash=")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len("hash="):]
	if cut := strings.IndexAny(rest, " \t\n"); cut >= 0 {
		rest = rest[:cut]
	}
	return rest
}

// splice reassembles the file with a fresh region body, keeping the
// marker lines at their original indentation. comment is the target
// format's line-comment prefix ("//" or "#").
func (r *region) splice(comment, hash, body string) string {
	var sb strings.Builder
	sb.WriteString(r.before)
	sb.WriteString(r.indent + beginLine(comment, hash))
	if body = strings.TrimRight(body, "\n"); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	sb.WriteString(r.indent + endLine(comment))
	sb.WriteString(r.after)
	return sb.String()
}

func beginLine(comment, hash string) string {
	return fmt.Sprintf("%s %s hash=%s\n", comment, beginToken, hash)
}

func endLine(comment string) string {
	return fmt.Sprintf("%s %s\n", comment, endToken)
}
