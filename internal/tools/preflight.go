package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/gate"
	"github.com/HendryAvila/decree/internal/lifecycle"
)

// PreflightTool handles the adr_preflight MCP tool.
// It classifies a proposed technical choice against the current
// constraints contract — a pure read, safe to call at any time.
type PreflightTool struct {
	manager *lifecycle.Manager
	gate    *gate.Gate
}

// NewPreflightTool creates a PreflightTool with its dependencies.
func NewPreflightTool(manager *lifecycle.Manager, g *gate.Gate) *PreflightTool {
	return &PreflightTool{manager: manager, gate: g}
}

// Definition returns the MCP tool definition for registration.
func (t *PreflightTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_preflight",
		mcp.WithDescription(
			"Check a technical choice against accepted architectural decisions "+
				"BEFORE adopting it. Returns ALLOWED (endorsed or exempt), "+
				"BLOCKED (banned by an accepted ADR, with the citing decision), or "+
				"REQUIRES_ADR (nothing covers it yet — document the decision first "+
				"with adr_create). Call this before adding any dependency, database, "+
				"framework, or architecture pattern.",
		),
		mcp.WithString("choice",
			mcp.Required(),
			mcp.Description("The technology or pattern being evaluated. Example: 'postgresql', 'react query'."),
		),
		mcp.WithString("category",
			mcp.Description("Optional category hint: database, frontend, architecture, tooling, ..."),
		),
	)
}

// Handle processes the adr_preflight tool call.
func (t *PreflightTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	choice := strings.TrimSpace(req.GetString("choice", ""))
	category := req.GetString("category", "")

	if choice == "" {
		return mcp.NewToolResultError("'choice' is required — name the technology being evaluated"), nil
	}

	c, err := t.manager.Current()
	if err != nil {
		return nil, fmt.Errorf("loading contract: %w", err)
	}

	decision := t.gate.Evaluate(c, choice, category)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Preflight: %s\n\n", decision.Verdict)
	fmt.Fprintf(&sb, "**Choice:** %s", decision.Choice)
	if decision.Normalized != strings.ToLower(decision.Choice) {
		fmt.Fprintf(&sb, " (resolved to %q)", decision.Normalized)
	}
	sb.WriteString("\n\n")
	sb.WriteString(decision.Guidance + "\n")

	if len(decision.MatchedRules) > 0 {
		sb.WriteString("\n## Matched Rules\n\n")
		for _, rule := range decision.MatchedRules {
			fmt.Fprintf(&sb, "- `%s`\n", rule)
		}
	}
	if len(decision.ADRs) > 0 {
		fmt.Fprintf(&sb, "\n**Decisions:** %s\n", strings.Join(decision.ADRs, ", "))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
