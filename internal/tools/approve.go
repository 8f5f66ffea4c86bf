package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/lifecycle"
)

// ApproveTool handles the adr_approve MCP tool.
// Approval is the transition that activates policy: it seals the record
// with its content digest and rebuilds the contract and guardrails.
type ApproveTool struct {
	manager *lifecycle.Manager
}

// NewApproveTool creates an ApproveTool with the lifecycle manager.
func NewApproveTool(manager *lifecycle.Manager) *ApproveTool {
	return &ApproveTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *ApproveTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_approve",
		mcp.WithDescription(
			"Approve a proposed ADR. ONLY call this after the user explicitly "+
				"approved the proposal — this activates real policy enforcement: "+
				"the record is sealed with a content digest, any ADRs it supersedes "+
				"are marked superseded, and the constraints contract and guardrail "+
				"files are rebuilt.",
		),
		mcp.WithString("adr_id",
			mcp.Required(),
			mcp.Description("Identifier of the proposed ADR. Example: 'ADR-0005'."),
		),
	)
}

// Handle processes the adr_approve tool call.
func (t *ApproveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("adr_id", ""))
	if id == "" {
		return mcp.NewToolResultError("'adr_id' is required — name the proposed ADR to approve"), nil
	}

	summary, err := t.manager.Approve(id)
	if err != nil {
		var invalid *lifecycle.InvalidTransitionError
		var tampered *lifecycle.TamperDetectedError
		if errors.As(err, &invalid) || errors.As(err, &tampered) {
			// The agent (or a human) can fix these; no server fault.
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("approving %s: %w", id, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# ADR Approved: %s\n\n", id)
	sb.WriteString("Status is now **accepted**; the record is sealed and its policy is active.\n\n")
	renderRebuildSummary(&sb, summary)

	return mcp.NewToolResultText(sb.String()), nil
}
