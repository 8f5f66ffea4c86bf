package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/index"
)

// SearchTool handles the adr_search MCP tool.
// It queries the SQLite full-text index over ADR titles and bodies.
type SearchTool struct {
	index *index.Store // nullable — search degrades to an explanation
}

// NewSearchTool creates a SearchTool. idx may be nil when the index
// subsystem failed to initialize; the tool then reports that instead
// of erroring the whole server.
func NewSearchTool(idx *index.Store) *SearchTool {
	return &SearchTool{index: idx}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_search",
		mcp.WithDescription(
			"Full-text search over all ADRs (titles and bodies). Use to find "+
				"prior decisions on a topic before creating a new ADR, or to "+
				"answer 'what did we decide about X'.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms. Example: 'database migration'."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default 10)."),
		),
	)
}

// Handle processes the adr_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required — provide search terms"), nil
	}
	if t.index == nil {
		return mcp.NewToolResultError(
			"the search index is unavailable (it failed to initialize at startup); " +
				"browse docs/adr/ directly instead",
		), nil
	}

	limit := intArg(req, "limit", 10)
	results, err := t.index.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No ADRs match %q.", query)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Search Results: %q\n\n", query)
	for _, r := range results {
		fmt.Fprintf(&sb, "- **%s** %s (%s", r.ID, r.Title, r.Status)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&sb, "; tags: %s", strings.Join(r.Tags, ", "))
		}
		sb.WriteString(")\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
