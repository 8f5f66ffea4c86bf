package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/lifecycle"
)

// GuardrailsTool handles the adr_guardrails MCP tool.
// It re-runs the full pipeline: contract rebuild plus projection into
// every configured guardrail target.
type GuardrailsTool struct {
	manager *lifecycle.Manager
}

// NewGuardrailsTool creates a GuardrailsTool with the lifecycle manager.
func NewGuardrailsTool(manager *lifecycle.Manager) *GuardrailsTool {
	return &GuardrailsTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *GuardrailsTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_guardrails",
		mcp.WithDescription(
			"Rebuild the constraints contract and re-project it into the "+
				"configured lint guardrail files (ESLint import bans, Ruff "+
				"banned-api, boundary rules). Only the tool-owned regions between "+
				"the decree markers are rewritten; everything else in the target "+
				"files is preserved. Use after restoring lost markers or when "+
				"guardrail files drifted.",
		),
	)
}

// Handle processes the adr_guardrails tool call.
func (t *GuardrailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := t.manager.Rebuild()
	if err != nil {
		return nil, fmt.Errorf("rebuilding guardrails: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Guardrails Rebuilt\n\n")
	renderRebuildSummary(&sb, summary)

	return mcp.NewToolResultText(sb.String()), nil
}
