package guardrail

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/contract"
)

// renderer turns a contract into one target format's region body.
type renderer interface {
	Kind() string
	// Comment is the target's line-comment prefix.
	Comment() string
	// Render produces the region body. Empty means the target has
	// nothing to enforce; the region is still written (emptied).
	Render(c *contract.Contract) (string, error)
	// Scaffold produces a complete new file when the target does not
	// exist yet.
	Scaffold(hash, body string) string
}

// renderers maps target kinds to their implementations.
var renderers = map[string]renderer{
	"eslint":     eslintRenderer{},
	"ruff":       ruffRenderer{},
	"boundaries": boundariesRenderer{},
}

// TargetError is one target's projection failure.
type TargetError struct {
	Path string
	Err  error
}

func (e TargetError) Error() string { return e.Path + ": " + e.Err.Error() }

// Result summarizes one projection run across all targets.
type Result struct {
	// Written lists target paths whose content changed.
	Written []string
	// Skipped lists targets already carrying the contract's hash.
	Skipped []string
	// Failures lists per-target errors. One bad target never aborts
	// the others.
	Failures []TargetError
}

// Project renders the contract into every configured target under root.
// Targets fail independently (bulkhead): a missing owned region in one
// file is reported while the remaining targets still proceed.
func Project(c *contract.Contract, root string, targets []adr.GuardrailTarget) Result {
	var res Result
	for _, target := range targets {
		path := filepath.Join(root, target.Path)
		changed, err := projectOne(c, path, target.Kind)
		switch {
		case err != nil:
			res.Failures = append(res.Failures, TargetError{Path: path, Err: err})
		case changed:
			res.Written = append(res.Written, path)
		default:
			res.Skipped = append(res.Skipped, path)
		}
	}
	sort.Strings(res.Written)
	sort.Strings(res.Skipped)
	return res
}

// projectOne applies the contract to one target file. Returns whether
// the file was (re)written.
func projectOne(c *contract.Contract, path, kind string) (bool, error) {
	r, ok := renderers[kind]
	if !ok {
		return false, fmt.Errorf("unknown guardrail kind %q", kind)
	}

	body, err := r.Render(c)
	if err != nil {
		return false, err
	}

	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content := r.Scaffold(c.Hash, body)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return false, fmt.Errorf("creating target directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return false, fmt.Errorf("writing target: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading target: %w", err)
	}

	reg, err := splitRegion(path, string(existing))
	if err != nil {
		return false, err
	}

	// Unchanged contract, unchanged region. Leave the file alone so
	// timestamps and watchers stay quiet.
	if reg.hash == c.Hash {
		return false, nil
	}

	content := reg.splice(r.Comment(), c.Hash, body)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writing target: %w", err)
	}
	return true, nil
}

// sortInPlace sorts a string slice; tiny helper shared by renderers.
func sortInPlace(s []string) { sort.Strings(s) }
