package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/lifecycle"
)

// DeprecateTool handles the adr_deprecate MCP tool.
type DeprecateTool struct {
	manager *lifecycle.Manager
}

// NewDeprecateTool creates a DeprecateTool with the lifecycle manager.
func NewDeprecateTool(manager *lifecycle.Manager) *DeprecateTool {
	return &DeprecateTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *DeprecateTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_deprecate",
		mcp.WithDescription(
			"Retire a proposed or accepted ADR without replacing it. "+
				"Deprecating an accepted ADR removes its policy from the "+
				"constraints contract and rebuilds guardrails. To replace a "+
				"decision instead, use adr_supersede. Requires explicit human "+
				"direction.",
		),
		mcp.WithString("adr_id",
			mcp.Required(),
			mcp.Description("Identifier of the ADR to deprecate."),
		),
	)
}

// Handle processes the adr_deprecate tool call.
func (t *DeprecateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("adr_id", ""))
	if id == "" {
		return mcp.NewToolResultError("'adr_id' is required — name the ADR to deprecate"), nil
	}

	summary, err := t.manager.Deprecate(id)
	if err != nil {
		var invalid *lifecycle.InvalidTransitionError
		var tampered *lifecycle.TamperDetectedError
		if errors.As(err, &invalid) || errors.As(err, &tampered) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("deprecating %s: %w", id, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# ADR Deprecated: %s\n\n", id)
	if summary.Contract != nil {
		renderRebuildSummary(&sb, summary)
	} else {
		sb.WriteString("The proposal never contributed policy; no rebuild was needed.\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
