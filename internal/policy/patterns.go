package policy

import (
	"regexp"
	"strings"
)

// --- Prose inference pattern table ---
//
// One ordered, declarative table of (regex, capture mapping) tuples.
// New phrasings are added as new rows; no row may change the meaning of
// an earlier one. Each row is testable in isolation.

// namePat matches a library or import name inside prose. Scoped npm
// packages ("@tanstack/react-query") and dotted module paths count.
const namePat = `([A-Za-z0-9@][A-Za-z0-9@/_.-]*)`

// layerPat matches an architectural layer name.
const layerPat = `([A-Za-z][A-Za-z0-9_-]*)`

// prosePattern is one row of the inference table: a compiled regex plus
// the function mapping its captures onto fragment rules.
type prosePattern struct {
	name  string
	re    *regexp.Regexp
	apply func(frag *Fragment, match []string)
}

// stopwords are capture results that look like names but are prose.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "it": true,
	"this": true, "that": true, "any": true, "all": true,
	"using": true, "them": true,
}

// cleanName normalizes a captured name; returns "" when the capture is
// not a plausible library name.
func cleanName(raw string) string {
	name := strings.ToLower(strings.Trim(raw, ".,;:"))
	if len(name) < 2 || stopwords[name] {
		return ""
	}
	return name
}

func addDisallow(frag *Fragment, raw string) {
	if name := cleanName(raw); name != "" {
		frag.ImportDisallow = append(frag.ImportDisallow, name)
	}
}

func addPrefer(frag *Fragment, raw string) {
	if name := cleanName(raw); name != "" {
		frag.ImportPrefer = append(frag.ImportPrefer, name)
	}
}

func addForbid(frag *Fragment, from, to string) {
	frag.Boundaries = append(frag.Boundaries, BoundaryRule{
		From: strings.ToLower(from),
		To:   strings.ToLower(to),
	})
}

// patternTable is scanned in order against the decision prose. Ordering
// matters only for readability — each row contributes independently and
// duplicates are removed during fragment normalization.
var patternTable = []prosePattern{
	{
		name: "dont_use",
		re:   regexp.MustCompile(`(?i)\bdon'?t\s+use\s+` + namePat),
		apply: func(f *Fragment, m []string) {
			addDisallow(f, m[1])
		},
	},
	{
		name: "avoid",
		re:   regexp.MustCompile(`(?i)\bavoid\s+(?:using\s+)?` + namePat),
		apply: func(f *Fragment, m []string) {
			addDisallow(f, m[1])
		},
	},
	{
		name: "is_deprecated",
		re:   regexp.MustCompile(`(?i)\b` + namePat + `\s+is\s+deprecated\b`),
		apply: func(f *Fragment, m []string) {
			addDisallow(f, m[1])
		},
	},
	{
		name: "no_longer_use",
		re:   regexp.MustCompile(`(?i)\bno\s+longer\s+use\s+` + namePat),
		apply: func(f *Fragment, m []string) {
			addDisallow(f, m[1])
		},
	},
	{
		name: "use_instead_of",
		re:   regexp.MustCompile(`(?i)\buse\s+` + namePat + `\s+instead\s+of\s+` + namePat),
		apply: func(f *Fragment, m []string) {
			addPrefer(f, m[1])
			addDisallow(f, m[2])
		},
	},
	{
		name: "prefer_over",
		re:   regexp.MustCompile(`(?i)\bprefer\s+` + namePat + `\s+over\s+` + namePat),
		apply: func(f *Fragment, m []string) {
			addPrefer(f, m[1])
			addDisallow(f, m[2])
		},
	},
	{
		name: "replace_with",
		re:   regexp.MustCompile(`(?i)\breplace\s+` + namePat + `\s+with\s+` + namePat),
		apply: func(f *Fragment, m []string) {
			addDisallow(f, m[1])
			addPrefer(f, m[2])
		},
	},
	{
		name: "should_not_access",
		re:   regexp.MustCompile(`(?i)\b` + layerPat + `\s+(?:should|must)\s+not\s+(?:access|call|use|import)\s+(?:the\s+)?` + layerPat),
		apply: func(f *Fragment, m []string) {
			addForbid(f, m[1], m[2])
		},
	},
	{
		name: "no_direct_access",
		re:   regexp.MustCompile(`(?i)\bno\s+direct\s+access\s+from\s+(?:the\s+)?` + layerPat + `\s+to\s+(?:the\s+)?` + layerPat),
		apply: func(f *Fragment, m []string) {
			addForbid(f, m[1], m[2])
		},
	},
}
