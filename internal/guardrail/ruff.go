package guardrail

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/HendryAvila/decree/internal/contract"
)

// ruffRenderer emits a banned-api table for Ruff's TOML configuration.
// The general import bans and the "python" ecosystem bans both apply.
type ruffRenderer struct{}

func (ruffRenderer) Kind() string    { return "ruff" }
func (ruffRenderer) Comment() string { return "#" }

// ruffBan is one entry in [lint.flake8-tidy-imports.banned-api].
type ruffBan struct {
	Msg string `toml:"msg"`
}

func (ruffRenderer) Render(c *contract.Contract) (string, error) {
	names := unionBans(c, "python")
	if len(names) == 0 {
		return "", nil
	}

	bans := map[string]ruffBan{}
	for _, name := range names {
		bans[name] = ruffBan{Msg: banMessage(c, name, "python")}
	}

	cfg := map[string]any{
		"lint": map[string]any{
			"flake8-tidy-imports": map[string]any{
				"banned-api": bans,
			},
		},
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return "", fmt.Errorf("rendering ruff rules: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (r ruffRenderer) Scaffold(hash, body string) string {
	var sb strings.Builder
	sb.WriteString(beginLine(r.Comment(), hash))
	if body = strings.TrimRight(body, "\n"); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	sb.WriteString(endLine(r.Comment()))
	return sb.String()
}
