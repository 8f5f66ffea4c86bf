// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools that depend on abstractions.
// No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/contract"
	"github.com/HendryAvila/decree/internal/gate"
	"github.com/HendryAvila/decree/internal/index"
	"github.com/HendryAvila/decree/internal/lifecycle"
	"github.com/HendryAvila/decree/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// components holds everything the tools depend on, resolved once.
type components struct {
	root    string
	store   *adr.FileStore
	manager *lifecycle.Manager
	gate    *gate.Gate
	idx     *index.Store // nil when the index failed to initialize
	cleanup func()
}

// load resolves all concrete dependencies from the current working
// directory. The index is an independent derived subsystem: if it fails
// to initialize, the lifecycle and gate keep working. We log a warning
// and the affected tools degrade gracefully.
func load() (*components, error) {
	root, err := tools.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}
	adrDir := filepath.Join(root, adr.DefaultDir)

	store := adr.NewFileStore(adrDir)

	settings, err := adr.LoadSettings(adrDir)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	cleanup := noop
	var indexer lifecycle.Indexer
	idx, idxErr := index.New(index.DefaultConfig(adrDir))
	if idxErr != nil {
		log.Printf("WARNING: search index disabled: %v", idxErr)
		idx = nil
	} else {
		indexer = idx
		cleanup = func() {
			if err := idx.Close(); err != nil {
				log.Printf("WARNING: closing index: %v", err)
			}
		}
	}

	snapshot := contract.NewSnapshot()
	return &components{
		root:    root,
		store:   store,
		manager: lifecycle.NewManager(store, snapshot, settings, root, indexer),
		gate:    gate.New(settings.Aliases, settings.ExemptCategories),
		idx:     idx,
		cleanup: cleanup,
	}, nil
}

// NewManager builds the lifecycle manager without the MCP transport.
// The CLI subcommands (contract, guardrails, index) use it directly.
// The cleanup function is always non-nil and safe to call.
func NewManager() (*lifecycle.Manager, func(), error) {
	c, err := load()
	if err != nil {
		return nil, noop, err
	}
	return c.manager, c.cleanup, nil
}

// New creates and configures the MCP server with all tools registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function closes the index database and must be
// called on shutdown (typically via defer). It is always non-nil and
// safe to call even if index init failed.
func New() (*server.MCPServer, func(), error) {
	c, err := load()
	if err != nil {
		return nil, noop, err
	}
	store, manager, g, idx := c.store, c.manager, c.gate, c.idx

	s := server.NewMCPServer(
		"decree",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	analyzeTool := tools.NewAnalyzeTool(store, c.root)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	preflightTool := tools.NewPreflightTool(manager, g)
	s.AddTool(preflightTool.Definition(), preflightTool.Handle)

	createTool := tools.NewCreateTool(store, idx)
	s.AddTool(createTool.Definition(), createTool.Handle)

	approveTool := tools.NewApproveTool(manager)
	s.AddTool(approveTool.Definition(), approveTool.Handle)

	supersedeTool := tools.NewSupersedeTool(store, manager)
	s.AddTool(supersedeTool.Definition(), supersedeTool.Handle)

	deprecateTool := tools.NewDeprecateTool(manager)
	s.AddTool(deprecateTool.Definition(), deprecateTool.Handle)

	contractTool := tools.NewContractTool(manager)
	s.AddTool(contractTool.Definition(), contractTool.Handle)

	guardrailsTool := tools.NewGuardrailsTool(manager)
	s.AddTool(guardrailsTool.Definition(), guardrailsTool.Handle)

	searchTool := tools.NewSearchTool(idx)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	planningTool := tools.NewPlanningTool(manager, idx)
	s.AddTool(planningTool.Definition(), planningTool.Handle)

	return s, c.cleanup, nil
}

// noop is the default cleanup function.
func noop() {}

// serverInstructions is the guidance injected into the agent's context
// when it connects.
func serverInstructions() string {
	return `decree manages this repository's Architectural Decision Records
(docs/adr/) and enforces the constraints that follow from them.

Workflow:
1. To document the architecture of an established codebase, start with
   adr_analyze — it maps the detected stack against existing ADRs.
2. Before adopting any library, database, framework, or pattern, call
   adr_preflight. BLOCKED must not be worked around — surface the cited
   ADRs to the user. REQUIRES_ADR means the decision needs documenting.
3. Document decisions with adr_create. ADRs start as proposals; NEVER
   call adr_approve or set auto_approve without the user's explicit
   approval of that specific ADR.
4. Approval activates policy: the constraints contract is rebuilt and
   the guardrail lint files are regenerated. Report conflicts and
   warnings from the rebuild summary to the user.
5. Use adr_planning_context at the start of non-trivial tasks and
   adr_search to find prior decisions.

Generated guardrail files contain a marked decree-owned region; never
edit inside the markers by hand.`
}
