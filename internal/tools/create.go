package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/index"
	"github.com/HendryAvila/decree/internal/policy"
)

// CreateTool handles the adr_create MCP tool.
// It writes a new proposed ADR — never an accepted one. Human approval
// goes through adr_approve.
type CreateTool struct {
	store adr.Store
	index *index.Store // nullable — related-ADR hints degrade gracefully
}

// NewCreateTool creates a CreateTool with its dependencies.
// idx may be nil; related-decision hints are skipped then.
func NewCreateTool(store adr.Store, idx *index.Store) *CreateTool {
	return &CreateTool{store: store, index: idx}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_create",
		mcp.WithDescription(
			"Create a new Architectural Decision Record as a PROPOSAL. "+
				"The ADR gets the next free ADR-NNNN identifier and status 'proposed'; "+
				"policies only take effect after a human approves it via adr_approve. "+
				"Call this when adr_preflight returned REQUIRES_ADR or when the user "+
				"makes a significant technical decision.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short decision title. Example: 'Use PostgreSQL for primary storage'."),
		),
		mcp.WithString("context",
			mcp.Required(),
			mcp.Description("The problem or situation that forces a decision."),
		),
		mcp.WithString("decision",
			mcp.Required(),
			mcp.Description("What was decided — the actual choice made."),
		),
		mcp.WithString("consequences",
			mcp.Required(),
			mcp.Description("Expected positive and negative outcomes."),
		),
		mcp.WithString("alternatives",
			mcp.Description("Other options considered and why they were rejected."),
		),
		mcp.WithString("deciders",
			mcp.Description("Comma-separated list of people who made the decision."),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated categorization tags. Example: 'backend,database'."),
		),
		mcp.WithString("policy",
			mcp.Description(
				"Optional structured policy block as a JSON object, for machine "+
					"enforcement. Schema:\n"+policy.ExpectedSchema+
					"\nWithout it, rules are inferred from the decision prose.",
			),
		),
	)
}

// Handle processes the adr_create tool call.
func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := strings.TrimSpace(req.GetString("title", ""))
	adrContext := strings.TrimSpace(req.GetString("context", ""))
	decision := strings.TrimSpace(req.GetString("decision", ""))
	consequences := strings.TrimSpace(req.GetString("consequences", ""))
	alternatives := req.GetString("alternatives", "")
	deciders := splitList(req.GetString("deciders", ""))
	tags := splitList(req.GetString("tags", ""))
	policyJSON := strings.TrimSpace(req.GetString("policy", ""))

	if title == "" {
		return mcp.NewToolResultError("'title' is required — provide a short title for the decision"), nil
	}
	if adrContext == "" {
		return mcp.NewToolResultError("'context' is required — describe the problem context"), nil
	}
	if decision == "" {
		return mcp.NewToolResultError("'decision' is required — state what was decided"), nil
	}
	if consequences == "" {
		return mcp.NewToolResultError("'consequences' is required — describe the expected outcomes"), nil
	}

	id, err := t.store.NextID()
	if err != nil {
		return nil, fmt.Errorf("allocating ADR id: %w", err)
	}

	doc := adr.NewDocument(id, title, adrContext, decision, consequences, alternatives, deciders, tags)

	if policyJSON != "" {
		var block map[string]any
		if err := json.Unmarshal([]byte(policyJSON), &block); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf(
				"'policy' must be a JSON object: %v\n\nexpected schema:\n%s", err, policy.ExpectedSchema,
			)), nil
		}
		doc.FrontMatter.Policy = block

		// Reject schema-invalid blocks now, not at approval time.
		if _, _, err := policy.Extract(doc); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	path, err := t.store.Create(doc)
	if err != nil {
		return nil, fmt.Errorf("creating ADR: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# ADR Created (proposed)\n\n")
	fmt.Fprintf(&sb, "- **ID:** %s\n", id)
	fmt.Fprintf(&sb, "- **Title:** %s\n", title)
	fmt.Fprintf(&sb, "- **File:** `%s`\n\n", path)
	sb.WriteString("The ADR is a proposal. Present it to the user for review, " +
		"then call adr_approve with explicit human approval.\n")

	t.renderRelated(&sb, title+" "+decision)

	return mcp.NewToolResultText(sb.String()), nil
}

// renderRelated lists existing decisions whose content overlaps the new
// one, so near-duplicates surface before approval.
func (t *CreateTool) renderRelated(sb *strings.Builder, text string) {
	if t.index == nil {
		return
	}
	results, err := t.index.Search(text, 5)
	if err != nil || len(results) == 0 {
		return
	}
	sb.WriteString("\n## Possibly Related Decisions\n\n")
	for _, r := range results {
		fmt.Fprintf(sb, "- **%s** %s (%s)\n", r.ID, r.Title, r.Status)
	}
}
