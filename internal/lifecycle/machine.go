// Package lifecycle governs ADR status transitions and triggers the
// contract and guardrail rebuilds that follow them.
//
// The model is single-writer, synchronous-call: every state-changing
// operation validates everything it will touch, then writes, then
// rebuilds, all before returning. A mutex serializes writers; readers
// use the atomically-swapped contract snapshot and never block.
package lifecycle

import (
	"fmt"
	"sync"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/contract"
	"github.com/HendryAvila/decree/internal/guardrail"
	"github.com/HendryAvila/decree/internal/policy"
)

// Indexer rebuilds the search/catalog index after a contract rebuild.
// Abstracted so the lifecycle does not depend on the SQLite layer, and
// so the index stays optional (nil Indexer is valid).
type Indexer interface {
	Rebuild(docs []*adr.Document, c *contract.Contract) error
}

// RebuildSummary reports which downstream artifacts a transition
// regenerated.
type RebuildSummary struct {
	// Contract is the freshly built and published contract.
	Contract *contract.Contract
	// Guardrails is the per-target projection outcome.
	Guardrails guardrail.Result
	// Warnings carries non-fatal extraction findings from the build.
	Warnings []policy.Warning
	// IndexErr records an index rebuild failure. The index is a
	// derived artifact, so its failure does not undo the transition.
	IndexErr error
}

// Manager owns all ADR state transitions for one repository.
type Manager struct {
	mu       sync.Mutex
	store    adr.Store
	snapshot *contract.Snapshot
	settings adr.Settings
	// root is the project directory guardrail paths are relative to.
	root    string
	indexer Indexer
}

// NewManager wires the lifecycle to its collaborators. indexer may be nil.
func NewManager(store adr.Store, snapshot *contract.Snapshot, settings adr.Settings, root string, indexer Indexer) *Manager {
	return &Manager{
		store:    store,
		snapshot: snapshot,
		settings: settings,
		root:     root,
		indexer:  indexer,
	}
}

// Approve transitions a proposed ADR to accepted: validates it, seals it
// with its content digest, marks any ADRs it supersedes, and rebuilds
// the contract and guardrails.
//
// All checks run before the first write. A tampered or mis-stated record
// anywhere in the affected set rejects the whole operation untouched.
func (m *Manager) Approve(id string) (*RebuildSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.store.Load(id)
	if err != nil {
		return nil, err
	}

	if doc.Status() != adr.StatusProposed {
		return nil, &InvalidTransitionError{ADRID: id, From: doc.Status(), To: adr.StatusAccepted}
	}

	if result := adr.Validate(doc); !result.Valid() {
		return nil, fmt.Errorf("approving %s: %s", id, result.Errors()[0].String())
	}

	// A structured policy block must decode before the decision can
	// start contributing to the contract.
	if _, _, err := policy.Extract(doc); err != nil {
		return nil, fmt.Errorf("approving %s: %w", id, err)
	}

	// Load and vet every superseded target before writing anything.
	targets := make([]*adr.Document, 0, len(doc.FrontMatter.Supersedes))
	for _, targetID := range doc.FrontMatter.Supersedes {
		target, err := m.store.Load(targetID)
		if err != nil {
			return nil, fmt.Errorf("approving %s: %w", id, err)
		}
		if err := m.checkDigest(target); err != nil {
			return nil, err
		}
		if target.Status() != adr.StatusAccepted {
			return nil, &InvalidTransitionError{
				ADRID: targetID, From: target.Status(), To: adr.StatusSuperseded,
			}
		}
		if target.FrontMatter.SupersededBy != "" && target.FrontMatter.SupersededBy != id {
			return nil, fmt.Errorf("approving %s: %s is already superseded by %s",
				id, targetID, target.FrontMatter.SupersededBy)
		}
		targets = append(targets, target)
	}

	// Writes. Seal the new decision first, then flip its targets.
	doc.FrontMatter.Status = adr.StatusAccepted
	doc.FrontMatter.Digest = doc.Digest()
	if err := m.store.Save(doc); err != nil {
		return nil, fmt.Errorf("approving %s: %w", id, err)
	}

	for _, target := range targets {
		target.FrontMatter.Status = adr.StatusSuperseded
		target.FrontMatter.SupersededBy = id
		// Re-seal: the status flip and back-edge are part of the
		// superseded record's sanctioned content.
		target.FrontMatter.Digest = target.Digest()
		if err := m.store.Save(target); err != nil {
			return nil, fmt.Errorf("superseding %s: %w", target.ID(), err)
		}
	}

	return m.rebuildLocked()
}

// Deprecate retires a proposed or accepted ADR. Deprecating an accepted
// record removes its policy from the contract, so a rebuild follows.
func (m *Manager) Deprecate(id string) (*RebuildSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.store.Load(id)
	if err != nil {
		return nil, err
	}

	switch doc.Status() {
	case adr.StatusProposed, adr.StatusAccepted:
		// allowed
	default:
		return nil, &InvalidTransitionError{ADRID: id, From: doc.Status(), To: adr.StatusDeprecated}
	}

	if err := m.checkDigest(doc); err != nil {
		return nil, err
	}

	wasAccepted := doc.Status() == adr.StatusAccepted

	doc.FrontMatter.Status = adr.StatusDeprecated
	if doc.Sealed() {
		doc.FrontMatter.Digest = doc.Digest()
	}
	if err := m.store.Save(doc); err != nil {
		return nil, fmt.Errorf("deprecating %s: %w", id, err)
	}

	if !wasAccepted {
		// A proposal never contributed policy; nothing to rebuild.
		// Contract stays nil to signal that no artifacts changed.
		return &RebuildSummary{}, nil
	}
	return m.rebuildLocked()
}

// Current returns the published contract, building and publishing one
// on first use. Unlike Rebuild, this never touches guardrail files or
// the index — gate callers get a read path with no write side effects.
func (m *Manager) Current() (*contract.Contract, error) {
	if c := m.snapshot.Current(); c != nil {
		return c, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.snapshot.Current(); c != nil {
		return c, nil
	}

	docs, err := m.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("building contract: %w", err)
	}
	c, err := contract.Build(docs)
	if err != nil {
		return nil, err
	}
	m.snapshot.Publish(c)
	return c, nil
}

// Rebuild recomputes the contract from the store, publishes it, and
// re-projects guardrails. Exposed for callers that changed nothing but
// want the derived artifacts refreshed (first run, restored markers).
func (m *Manager) Rebuild() (*RebuildSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rebuildLocked()
}

func (m *Manager) rebuildLocked() (*RebuildSummary, error) {
	docs, err := m.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("rebuilding contract: %w", err)
	}

	c, err := contract.Build(docs)
	if err != nil {
		return nil, err
	}
	m.snapshot.Publish(c)

	summary := &RebuildSummary{
		Contract:   c,
		Warnings:   c.Warnings,
		Guardrails: guardrail.Project(c, m.root, m.settings.Targets),
	}

	if m.indexer != nil {
		summary.IndexErr = m.indexer.Rebuild(docs, c)
	}
	return summary, nil
}

// checkDigest rejects any operation touching a sealed record whose
// content no longer matches its digest.
func (m *Manager) checkDigest(doc *adr.Document) error {
	if doc.Tampered() {
		return &TamperDetectedError{
			ADRID:    doc.ID(),
			Stored:   doc.FrontMatter.Digest,
			Computed: doc.Digest(),
		}
	}
	return nil
}
