package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/decree/internal/adr"
)

// AnalyzeTool handles the adr_analyze MCP tool.
// It is the entry point for adopting ADRs in an established codebase:
// it scans the project's dependency manifests, names the detected
// stack, lists the decisions already documented, and hands the agent an
// analysis prompt to find the ones that are not.
type AnalyzeTool struct {
	store adr.Store
	root  string
}

// NewAnalyzeTool creates an AnalyzeTool over the project root.
func NewAnalyzeTool(store adr.Store, root string) *AnalyzeTool {
	return &AnalyzeTool{store: store, root: root}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("adr_analyze",
		mcp.WithDescription(
			"Analyze the project for architectural decisions that should "+
				"become ADRs. Scans dependency manifests (package.json, go.mod, "+
				"pyproject.toml, requirements.txt, Cargo.toml), detects the "+
				"technology stack, and returns an analysis prompt plus next "+
				"steps. START HERE when the user wants to document existing "+
				"architecture or adopt ADRs in an established codebase.",
		),
		mcp.WithString("focus_areas",
			mcp.Description("Comma-separated areas to narrow the analysis. Example: 'frontend,database'."),
		),
	)
}

// Handle processes the adr_analyze tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	focusAreas := splitList(req.GetString("focus_areas", ""))

	manifests := scanManifests(t.root)

	docs, err := t.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading existing ADRs: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Project Analysis\n\n")

	sb.WriteString("## Detected Stack\n\n")
	if len(manifests) == 0 {
		sb.WriteString("_No dependency manifests found at the project root. " +
			"The architectural decisions here live in the code itself — " +
			"read the tree and ask the user about the stack._\n")
	}
	for _, m := range manifests {
		fmt.Fprintf(&sb, "- **%s** (%s): %d dependencies", m.path, m.ecosystem, len(m.deps))
		if techs := detectTechnologies(m.deps); len(techs) > 0 {
			fmt.Fprintf(&sb, " — %s", strings.Join(techs, ", "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Existing Decisions\n\n")
	if len(docs) == 0 {
		sb.WriteString("_No ADRs yet — every detected technology is an undocumented decision._\n")
	}
	for _, doc := range docs {
		fmt.Fprintf(&sb, "- **%s** %s (%s)\n", doc.ID(), doc.Title(), doc.Status())
	}

	sb.WriteString("\n## Analysis Prompt\n\n")
	sb.WriteString("Work through the codebase and identify the architectural " +
		"decisions that shaped it:\n\n")
	if len(focusAreas) > 0 {
		fmt.Fprintf(&sb, "Restrict the analysis to: %s.\n\n", strings.Join(focusAreas, ", "))
	}
	sb.WriteString("1. For each technology listed above, find where and how it is " +
		"used. Was it a deliberate choice? What were the alternatives?\n" +
		"2. Look beyond dependencies: data storage layout, API style, " +
		"module boundaries, testing strategy, deployment shape.\n" +
		"3. Skip anything already covered by an existing decision above.\n")

	sb.WriteString("\n## Next Steps\n\n")
	sb.WriteString("1. Present the decisions you identify to the user for confirmation.\n" +
		"2. Call adr_create for each confirmed decision — they start as proposals.\n" +
		"3. Run adr_preflight before introducing any new technology.\n")

	return mcp.NewToolResultText(sb.String()), nil
}

// manifest is one recognized dependency file at the project root.
type manifest struct {
	path      string
	ecosystem string
	deps      []string
}

// scanManifests reads the dependency manifests present at root.
// Unreadable or unparsable files are skipped — analysis is best-effort
// and should not fail on one broken manifest.
func scanManifests(root string) []manifest {
	var found []manifest
	for _, scan := range []func(string) (manifest, bool){
		readPackageJSON,
		readGoMod,
		readPyProject,
		readRequirements,
		readCargoTOML,
	} {
		if m, ok := scan(root); ok {
			found = append(found, m)
		}
	}
	return found
}

func readPackageJSON(root string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return manifest{}, false
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return manifest{}, false
	}
	var deps []string
	for name := range pkg.Dependencies {
		deps = append(deps, strings.ToLower(name))
	}
	for name := range pkg.DevDependencies {
		deps = append(deps, strings.ToLower(name))
	}
	sort.Strings(deps)
	return manifest{path: "package.json", ecosystem: "javascript", deps: deps}, true
}

func readGoMod(root string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return manifest{}, false
	}
	var deps []string
	inBlock := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "require (":
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case strings.HasPrefix(line, "require "):
			if fields := strings.Fields(line); len(fields) >= 3 {
				deps = append(deps, fields[1])
			}
		case inBlock && line != "" && !strings.HasPrefix(line, "//"):
			deps = append(deps, strings.Fields(line)[0])
		}
	}
	sort.Strings(deps)
	return manifest{path: "go.mod", ecosystem: "go", deps: deps}, true
}

func readPyProject(root string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return manifest{}, false
	}
	var py struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &py); err != nil {
		return manifest{}, false
	}
	var deps []string
	for _, spec := range py.Project.Dependencies {
		deps = append(deps, depName(spec))
	}
	for name := range py.Tool.Poetry.Dependencies {
		if name != "python" {
			deps = append(deps, strings.ToLower(name))
		}
	}
	sort.Strings(deps)
	return manifest{path: "pyproject.toml", ecosystem: "python", deps: deps}, true
}

func readRequirements(root string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(root, "requirements.txt"))
	if err != nil {
		return manifest{}, false
	}
	var deps []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		deps = append(deps, depName(line))
	}
	sort.Strings(deps)
	return manifest{path: "requirements.txt", ecosystem: "python", deps: deps}, true
}

func readCargoTOML(root string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return manifest{}, false
	}
	var cargo struct {
		Dependencies map[string]any `toml:"dependencies"`
	}
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return manifest{}, false
	}
	var deps []string
	for name := range cargo.Dependencies {
		deps = append(deps, strings.ToLower(name))
	}
	sort.Strings(deps)
	return manifest{path: "Cargo.toml", ecosystem: "rust", deps: deps}, true
}

// depName strips the version specifier and extras from a requirement
// line ("Flask[async]>=2.0" -> "flask").
func depName(spec string) string {
	if i := strings.IndexAny(spec, " <>=!~[;("); i >= 0 {
		spec = spec[:i]
	}
	return strings.ToLower(strings.TrimSpace(spec))
}

// knownTechnologies maps dependency names (or the last element of a Go
// module path) to the technology they signal.
var knownTechnologies = map[string]string{
	"react":         "React",
	"vue":           "Vue",
	"@angular/core": "Angular",
	"svelte":        "Svelte",
	"next":          "Next.js",
	"express":       "Express",
	"typescript":    "TypeScript",
	"jest":          "Jest",
	"vitest":        "Vitest",
	"prisma":        "Prisma",
	"mongoose":      "MongoDB",
	"pg":            "PostgreSQL",
	"mysql2":        "MySQL",
	"redis":         "Redis",
	"flask":         "Flask",
	"django":        "Django",
	"fastapi":       "FastAPI",
	"sqlalchemy":    "SQLAlchemy",
	"celery":        "Celery",
	"pytest":        "pytest",
	"psycopg2":      "PostgreSQL",
	"pymongo":       "MongoDB",
	"gin":           "Gin",
	"echo":          "Echo",
	"chi":           "Chi",
	"cobra":         "Cobra",
	"sqlite":        "SQLite",
	"mcp-go":        "MCP",
	"tokio":         "Tokio",
	"actix-web":     "Actix Web",
	"serde":         "Serde",
}

// detectTechnologies names the recognizable technologies in a
// dependency list, in deterministic order.
func detectTechnologies(deps []string) []string {
	seen := make(map[string]bool)
	var techs []string
	for _, dep := range deps {
		label, ok := knownTechnologies[dep]
		if !ok {
			// Go module paths carry the project name last.
			label, ok = knownTechnologies[path.Base(dep)]
		}
		if ok && !seen[label] {
			seen[label] = true
			techs = append(techs, label)
		}
	}
	sort.Strings(techs)
	return techs
}
