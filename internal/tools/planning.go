package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/index"
	"github.com/HendryAvila/decree/internal/lifecycle"
)

// PlanningTool handles the adr_planning_context MCP tool.
// It assembles the architectural context relevant to a task: matching
// accepted decisions from the index plus the contract's active rules.
type PlanningTool struct {
	manager *lifecycle.Manager
	index   *index.Store // nullable — decision matching degrades
}

// NewPlanningTool creates a PlanningTool with its dependencies.
func NewPlanningTool(manager *lifecycle.Manager, idx *index.Store) *PlanningTool {
	return &PlanningTool{manager: manager, index: idx}
}

// Definition returns the MCP tool definition for registration.
func (t *PlanningTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_planning_context",
		mcp.WithDescription(
			"Gather the architectural context for a task before implementing it: "+
				"accepted decisions matching the task description, plus the active "+
				"constraint rules (bans, endorsements, boundaries) the work must "+
				"respect. Read-only; call at the start of any non-trivial task.",
		),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("What you are about to do. Example: 'add caching to the user service'."),
		),
	)
}

// Handle processes the adr_planning_context tool call.
func (t *PlanningTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task := strings.TrimSpace(req.GetString("task", ""))
	if task == "" {
		return mcp.NewToolResultError("'task' is required — describe what you are about to do"), nil
	}

	c, err := t.manager.Current()
	if err != nil {
		return nil, fmt.Errorf("loading contract: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Planning Context\n\n")

	sb.WriteString("## Relevant Decisions\n\n")
	if t.index == nil {
		sb.WriteString("_Search index unavailable; browse docs/adr/ directly._\n")
	} else if results, err := t.index.Search(task, 5); err == nil && len(results) > 0 {
		for _, r := range results {
			fmt.Fprintf(&sb, "- **%s** %s (%s)\n", r.ID, r.Title, r.Status)
		}
	} else {
		sb.WriteString("_No decisions match this task._\n")
	}

	sb.WriteString("\n## Active Constraints\n\n")
	if c.Empty() {
		sb.WriteString("_The contract has no rules yet._\n")
	} else {
		if len(c.ImportDisallow) > 0 {
			fmt.Fprintf(&sb, "- **Banned imports:** %s\n", strings.Join(c.ImportDisallow, ", "))
		}
		if len(c.ImportPrefer) > 0 {
			fmt.Fprintf(&sb, "- **Endorsed imports:** %s\n", strings.Join(c.ImportPrefer, ", "))
		}
		ecosystems := make([]string, 0, len(c.Ecosystems))
		for eco := range c.Ecosystems {
			ecosystems = append(ecosystems, eco)
		}
		sort.Strings(ecosystems)
		for _, eco := range ecosystems {
			fmt.Fprintf(&sb, "- **Banned (%s):** %s\n", eco, strings.Join(c.Ecosystems[eco], ", "))
		}
		for _, rule := range c.Boundaries {
			fmt.Fprintf(&sb, "- **Boundary:** %s must not depend on %s\n", rule.From, rule.To)
		}
	}

	sb.WriteString("\nRun adr_preflight before adopting anything new.\n")
	return mcp.NewToolResultText(sb.String()), nil
}
