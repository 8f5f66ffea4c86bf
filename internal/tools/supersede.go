package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/lifecycle"
)

// SupersedeTool handles the adr_supersede MCP tool.
// It creates a replacement decision that, once approved, flips the old
// record to superseded and points it at its successor.
type SupersedeTool struct {
	store   adr.Store
	manager *lifecycle.Manager
}

// NewSupersedeTool creates a SupersedeTool with its dependencies.
func NewSupersedeTool(store adr.Store, manager *lifecycle.Manager) *SupersedeTool {
	return &SupersedeTool{store: store, manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *SupersedeTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_supersede",
		mcp.WithDescription(
			"Replace an accepted ADR with a new decision in the same problem "+
				"domain. Creates the replacement as a proposal carrying a "+
				"'supersedes' link; on approval the old ADR flips to superseded "+
				"and its policy stops contributing to the contract. "+
				"Set auto_approve only when the user already approved the replacement.",
		),
		mcp.WithString("old_adr_id",
			mcp.Required(),
			mcp.Description("Identifier of the accepted ADR being replaced."),
		),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the replacement decision.")),
		mcp.WithString("context", mcp.Required(), mcp.Description("Why the replacement is needed.")),
		mcp.WithString("decision", mcp.Required(), mcp.Description("The new decision.")),
		mcp.WithString("consequences", mcp.Required(), mcp.Description("Expected outcomes of the new decision.")),
		mcp.WithString("alternatives", mcp.Description("Other options considered.")),
		mcp.WithString("deciders", mcp.Description("Comma-separated deciders.")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags.")),
		mcp.WithBoolean("auto_approve",
			mcp.Description("Approve the replacement immediately. Requires prior explicit human approval."),
		),
	)
}

// Handle processes the adr_supersede tool call.
func (t *SupersedeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldID := strings.TrimSpace(req.GetString("old_adr_id", ""))
	title := strings.TrimSpace(req.GetString("title", ""))
	adrContext := strings.TrimSpace(req.GetString("context", ""))
	decision := strings.TrimSpace(req.GetString("decision", ""))
	consequences := strings.TrimSpace(req.GetString("consequences", ""))
	autoApprove := boolArg(req, "auto_approve", false)

	if oldID == "" {
		return mcp.NewToolResultError("'old_adr_id' is required — name the ADR being replaced"), nil
	}
	if title == "" || adrContext == "" || decision == "" || consequences == "" {
		return mcp.NewToolResultError(
			"'title', 'context', 'decision', and 'consequences' are all required for the replacement",
		), nil
	}

	old, err := t.store.Load(oldID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading %s: %v", oldID, err)), nil
	}
	if old.Status() != adr.StatusAccepted {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%s has status %q — only accepted ADRs can be superseded", oldID, old.Status(),
		)), nil
	}

	id, err := t.store.NextID()
	if err != nil {
		return nil, fmt.Errorf("allocating ADR id: %w", err)
	}

	doc := adr.NewDocument(id, title, adrContext, decision, consequences,
		req.GetString("alternatives", ""),
		splitList(req.GetString("deciders", "")),
		splitList(req.GetString("tags", "")))
	doc.FrontMatter.Supersedes = []string{oldID}

	path, err := t.store.Create(doc)
	if err != nil {
		return nil, fmt.Errorf("creating replacement ADR: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Supersede: %s -> %s\n\n", oldID, id)
	fmt.Fprintf(&sb, "- **Replacement:** %s `%s`\n", id, path)

	if !autoApprove {
		fmt.Fprintf(&sb,
			"- **Old ADR:** %s stays accepted until the replacement is approved\n\n", oldID)
		sb.WriteString("Present the replacement to the user, then call adr_approve.\n")
		return mcp.NewToolResultText(sb.String()), nil
	}

	summary, err := t.manager.Approve(id)
	if err != nil {
		var invalid *lifecycle.InvalidTransitionError
		var tampered *lifecycle.TamperDetectedError
		if errors.As(err, &invalid) || errors.As(err, &tampered) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"replacement %s created at `%s` but approval failed: %v", id, path, err,
			)), nil
		}
		return nil, fmt.Errorf("approving %s: %w", id, err)
	}

	fmt.Fprintf(&sb, "- **Old ADR:** %s is now superseded by %s\n\n", oldID, id)
	renderRebuildSummary(&sb, summary)

	return mcp.NewToolResultText(sb.String()), nil
}
