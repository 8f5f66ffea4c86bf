package guardrail

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HendryAvila/decree/internal/contract"
)

// eslintRenderer emits a no-restricted-imports ruleset for the ESLint
// JSONC config format. The general import bans and the "javascript"
// ecosystem bans both apply here.
type eslintRenderer struct{}

func (eslintRenderer) Kind() string    { return "eslint" }
func (eslintRenderer) Comment() string { return "//" }

type eslintRestrictedPath struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (eslintRenderer) Render(c *contract.Contract) (string, error) {
	names := unionBans(c, "javascript")

	var paths []eslintRestrictedPath
	for _, name := range names {
		paths = append(paths, eslintRestrictedPath{
			Name:    name,
			Message: banMessage(c, name, "javascript"),
		})
	}

	rules := map[string]any{}
	if len(paths) > 0 {
		rules["no-restricted-imports"] = []any{"error", map[string]any{"paths": paths}}
	}

	data, err := json.MarshalIndent(map[string]any{"rules": rules}, "  ", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering eslint rules: %w", err)
	}

	// The region body is the object's inner fields so the scaffold can
	// place the markers inside the top-level braces. Drop the outer
	// brace lines; the prefix keeps the inner lines indented.
	lines := strings.Split(string(data), "\n")
	return strings.Join(lines[1:len(lines)-1], "\n"), nil
}

func (r eslintRenderer) Scaffold(hash, body string) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	sb.WriteString("  " + beginLine(r.Comment(), hash))
	if body = strings.TrimRight(body, "\n"); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	sb.WriteString("  " + endLine(r.Comment()))
	sb.WriteString("}\n")
	return sb.String()
}

// unionBans joins the general import disallow list with one ecosystem's
// list, sorted and deduplicated.
func unionBans(c *contract.Contract, ecosystem string) []string {
	set := map[string]bool{}
	for _, name := range c.ImportDisallow {
		set[name] = true
	}
	for _, name := range c.Ecosystems[ecosystem] {
		set[name] = true
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sortInPlace(out)
	return out
}

// banMessage renders the human-readable rule message, citing the
// decisions that banned the import.
func banMessage(c *contract.Contract, name, ecosystem string) string {
	ids := map[string]bool{}
	for _, id := range c.RuleADRs("import:" + name) {
		ids[id] = true
	}
	for _, id := range c.RuleADRs(ecosystem + ":" + name) {
		ids[id] = true
	}
	cited := make([]string, 0, len(ids))
	for id := range ids {
		cited = append(cited, id)
	}
	sortInPlace(cited)
	if len(cited) == 0 {
		return fmt.Sprintf("import of %q is banned by an accepted ADR", name)
	}
	return fmt.Sprintf("import of %q is banned by %s", name, strings.Join(cited, ", "))
}
