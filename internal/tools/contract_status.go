package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/lifecycle"
)

// ContractTool handles the adr_contract MCP tool.
// It exposes the merged constraints contract as JSON — a pure read.
type ContractTool struct {
	manager *lifecycle.Manager
}

// NewContractTool creates a ContractTool with the lifecycle manager.
func NewContractTool(manager *lifecycle.Manager) *ContractTool {
	return &ContractTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *ContractTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_contract",
		mcp.WithDescription(
			"Return the current constraints contract as JSON: merged import "+
				"bans and endorsements, per-ecosystem bans, boundary rules, "+
				"provenance (which ADR asserted which rule), detected policy "+
				"conflicts, and the contract hash. Read-only.",
		),
	)
}

// Handle processes the adr_contract tool call.
func (t *ContractTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := t.manager.Current()
	if err != nil {
		return nil, fmt.Errorf("loading contract: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding contract: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
