// Package tools implements the MCP tool handlers for the ADR pipeline.
//
// Each tool is a struct receiving its dependencies via the constructor
// (DIP) and exposing Definition() plus a Handle compatible with mcp-go's
// CallToolRequest signature.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on adr.Store and the lifecycle.Manager, not on files
// - Agent mistakes (bad arguments, unknown IDs) come back as tool-result
//   errors with remediation text; Go errors are reserved for real faults
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/guardrail"
	"github.com/HendryAvila/decree/internal/lifecycle"
	"github.com/HendryAvila/decree/internal/policy"
)

// FindProjectRoot walks up from the current working directory looking
// for an existing docs/adr directory. If none is found, returns cwd —
// the first adr_create call will create the layout there.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		candidate := filepath.Join(current, "docs", "adr")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// splitList parses a comma-separated argument into a trimmed list.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// renderRebuildSummary appends a human-readable rebuild report to sb.
// Shared by every tool that triggers the pipeline.
func renderRebuildSummary(sb *strings.Builder, summary *lifecycle.RebuildSummary) {
	c := summary.Contract
	sb.WriteString("## Contract\n\n")
	fmt.Fprintf(sb, "- **Hash:** `%.16s...`\n", c.Hash)
	fmt.Fprintf(sb, "- **Accepted ADRs:** %d\n", len(c.AcceptedADRs))
	fmt.Fprintf(sb, "- **Import bans:** %d, **endorsements:** %d, **boundaries:** %d\n",
		len(c.ImportDisallow), len(c.ImportPrefer), len(c.Boundaries))

	if len(c.Conflicts) > 0 {
		sb.WriteString("\n## Policy Conflicts\n\n")
		for _, conflict := range c.Conflicts {
			fmt.Fprintf(sb, "- `%s` (%s): %s\n",
				conflict.Rule, conflict.Kind, strings.Join(conflict.ADRs, ", "))
		}
	}

	renderWarnings(sb, summary.Warnings)

	sb.WriteString("\n## Guardrails\n\n")
	renderProjection(sb, summary.Guardrails)

	if summary.IndexErr != nil {
		fmt.Fprintf(sb, "\n**Index rebuild failed:** %v\n", summary.IndexErr)
	}
}

// renderProjection appends the per-target projection outcome.
func renderProjection(sb *strings.Builder, res guardrail.Result) {
	for _, path := range res.Written {
		fmt.Fprintf(sb, "- written: `%s`\n", path)
	}
	for _, path := range res.Skipped {
		fmt.Fprintf(sb, "- up to date: `%s`\n", path)
	}
	for _, failure := range res.Failures {
		fmt.Fprintf(sb, "- **failed:** %s\n", failure.Error())
	}
	if len(res.Written)+len(res.Skipped)+len(res.Failures) == 0 {
		sb.WriteString("_No guardrail targets configured._\n")
	}
}

// renderWarnings appends extraction warnings, if any.
func renderWarnings(sb *strings.Builder, warnings []policy.Warning) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString("\n## Warnings\n\n")
	for _, w := range warnings {
		fmt.Fprintf(sb, "- %s\n", w)
	}
}
