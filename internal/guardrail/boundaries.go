package guardrail

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/decree/internal/contract"
)

// boundariesRenderer emits the layering rules as a plain-text ruleset,
// one directional forbid per line, consumable by import-linter style
// checkers or CI scripts.
type boundariesRenderer struct{}

func (boundariesRenderer) Kind() string    { return "boundaries" }
func (boundariesRenderer) Comment() string { return "#" }

func (boundariesRenderer) Render(c *contract.Contract) (string, error) {
	if len(c.Boundaries) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, rule := range c.Boundaries {
		cited := strings.Join(c.RuleADRs("boundary:"+rule.Key()), ", ")
		if cited == "" {
			fmt.Fprintf(&sb, "forbid %s -> %s\n", rule.From, rule.To)
			continue
		}
		fmt.Fprintf(&sb, "forbid %s -> %s  # %s\n", rule.From, rule.To, cited)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (r boundariesRenderer) Scaffold(hash, body string) string {
	var sb strings.Builder
	sb.WriteString(beginLine(r.Comment(), hash))
	if body = strings.TrimRight(body, "\n"); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	sb.WriteString(endLine(r.Comment()))
	return sb.String()
}
