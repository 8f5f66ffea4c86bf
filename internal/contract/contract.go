// Package contract merges per-ADR policy fragments into the single
// repository-wide constraints contract.
//
// The contract has no identity of its own: it is always recomputed from
// scratch as a pure function of the currently accepted ADR set. Build is
// deterministic and order independent — the same accepted set yields a
// byte-identical contract and hash no matter how the inputs were ordered.
package contract

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/policy"
)

// Conflict records a merge collision between ADRs. Conflicts are never
// fatal — deny beats allow, the denying rule survives, and both sides
// are named so a human can reconcile the decisions.
type Conflict struct {
	// Rule is the contested item: an import name or a boundary pair.
	Rule string `json:"rule"`
	// Kind is "deny_beats_allow" for import collisions or
	// "boundary_allow_forbid" for layer-pair collisions.
	Kind string `json:"kind"`
	// ADRs lists every contributing ADR identifier, sorted.
	ADRs []string `json:"adrs"`
}

// Contract is the merged, conflict-resolved rule set.
type Contract struct {
	// ImportDisallow is the union of all banned imports.
	ImportDisallow []string `json:"import_disallow"`
	// ImportPrefer is the union of endorsed imports, minus any item
	// that lost a deny-beats-allow conflict.
	ImportPrefer []string `json:"import_prefer"`
	// Ecosystems holds per-ecosystem disallow unions.
	Ecosystems map[string][]string `json:"ecosystems,omitempty"`
	// Boundaries lists the surviving forbid rules, deduplicated by
	// (from, to) pair.
	Boundaries []policy.BoundaryRule `json:"boundaries,omitempty"`
	// Provenance maps each surviving rule to the sorted ADR
	// identifiers that asserted it. Keys are prefixed by rule kind:
	// "import:flask", "prefer:fastapi", "python:flask",
	// "boundary:ui -> db".
	Provenance map[string][]string `json:"provenance"`
	// Conflicts lists every collision detected during the merge.
	Conflicts []Conflict `json:"conflicts,omitempty"`
	// AcceptedADRs is the sorted identifier set the contract was
	// built from.
	AcceptedADRs []string `json:"accepted_adrs"`
	// Hash is the SHA-256 over the canonical merged structure,
	// used by consumers for cheap change detection.
	Hash string `json:"hash"`
	// Warnings carries non-fatal extraction findings (policy-free
	// accepted ADRs). Not part of the hash.
	Warnings []policy.Warning `json:"-"`
}

// Empty reports whether the contract carries no rules.
func (c *Contract) Empty() bool {
	return len(c.ImportDisallow) == 0 &&
		len(c.ImportPrefer) == 0 &&
		len(c.Ecosystems) == 0 &&
		len(c.Boundaries) == 0
}

// RuleADRs returns the provenance for one rule key, or nil.
func (c *Contract) RuleADRs(key string) []string { return c.Provenance[key] }

// Build computes the contract from the full ADR set. Non-accepted
// documents are ignored; a malformed policy block on an accepted
// document aborts the build (the block must be fixed or the ADR
// deprecated — dropping it silently would un-enforce a decision).
func Build(docs []*adr.Document) (*Contract, error) {
	var fragments []*policy.Fragment
	var warnings []policy.Warning
	var accepted []string

	for _, doc := range docs {
		if doc.Status() != adr.StatusAccepted {
			continue
		}
		accepted = append(accepted, doc.ID())

		frag, warns, err := policy.Extract(doc)
		if err != nil {
			return nil, fmt.Errorf("building contract: %w", err)
		}
		warnings = append(warnings, warns...)
		if !frag.Empty() {
			fragments = append(fragments, frag)
		}
	}
	sort.Strings(accepted)

	c := merge(fragments)
	c.AcceptedADRs = accepted
	c.Warnings = warnings

	hash, err := c.computeHash()
	if err != nil {
		return nil, fmt.Errorf("hashing contract: %w", err)
	}
	c.Hash = hash
	return c, nil
}

// merge runs the union-with-precedence passes. Every pass is linear in
// the total rule count; ADRs only meet each other on identical rule keys.
func merge(fragments []*policy.Fragment) *Contract {
	prov := newProvenance()

	// Pass 1: import disallow union.
	disallow := map[string]bool{}
	for _, frag := range fragments {
		for _, name := range frag.ImportDisallow {
			disallow[name] = true
			prov.add("import:"+name, frag.SourceID)
		}
	}

	// Pass 2: import prefer union, deny beats allow.
	prefer := map[string]bool{}
	var conflicts []Conflict
	for _, frag := range fragments {
		for _, name := range frag.ImportPrefer {
			if disallow[name] {
				// The denying and preferring ADRs are both named.
				conflicts = append(conflicts, Conflict{
					Rule: name,
					Kind: "deny_beats_allow",
					ADRs: mergedIDs(prov.get("import:"+name), frag.SourceID),
				})
				continue
			}
			prefer[name] = true
			prov.add("prefer:"+name, frag.SourceID)
		}
	}
	// A prefer entry can predate the disallow that outlaws it when a
	// later fragment bans an already-preferred item. Sweep once more.
	for name := range prefer {
		if disallow[name] {
			delete(prefer, name)
			conflicts = append(conflicts, Conflict{
				Rule: name,
				Kind: "deny_beats_allow",
				ADRs: mergedIDs(prov.get("import:"+name), prov.get("prefer:"+name)...),
			})
			prov.remove("prefer:" + name)
		}
	}

	// Pass 3: boundaries. Forbids dedupe by (from, to); an explicit
	// allow colliding with a forbid loses and records a conflict.
	// Opposite directions on the same layers are distinct rules.
	forbids := map[string]policy.BoundaryRule{}
	allows := map[string][]string{}
	for _, frag := range fragments {
		for _, rule := range frag.Boundaries {
			key := rule.Key()
			if rule.Allow {
				allows[key] = append(allows[key], frag.SourceID)
				continue
			}
			forbids[key] = rule
			prov.add("boundary:"+key, frag.SourceID)
		}
	}
	for key, allowedBy := range allows {
		if _, forbidden := forbids[key]; forbidden {
			conflicts = append(conflicts, Conflict{
				Rule: key,
				Kind: "boundary_allow_forbid",
				ADRs: mergedIDs(prov.get("boundary:"+key), allowedBy...),
			})
		}
	}

	// Pass 4: ecosystem disallow unions. No prefer counterpart, so
	// no conflicts are possible here.
	ecosystems := map[string]map[string]bool{}
	for _, frag := range fragments {
		for eco, names := range frag.Ecosystems {
			if ecosystems[eco] == nil {
				ecosystems[eco] = map[string]bool{}
			}
			for _, name := range names {
				ecosystems[eco][name] = true
				prov.add(eco+":"+name, frag.SourceID)
			}
		}
	}

	// Canonical ordering throughout.
	c := &Contract{
		ImportDisallow: sortedKeys(disallow),
		ImportPrefer:   sortedKeys(prefer),
		Provenance:     prov.sorted(),
		Conflicts:      sortConflicts(dedupeConflicts(conflicts)),
	}
	if len(ecosystems) > 0 {
		c.Ecosystems = map[string][]string{}
		for eco, set := range ecosystems {
			c.Ecosystems[eco] = sortedKeys(set)
		}
	}
	for _, key := range sortedBoundaryKeys(forbids) {
		c.Boundaries = append(c.Boundaries, forbids[key])
	}
	return c
}

// computeHash serializes the canonicalized contract (hash field zeroed,
// warnings excluded) and hashes it.
func (c *Contract) computeHash() (string, error) {
	clone := *c
	clone.Hash = ""
	data, err := json.Marshal(&clone)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// --- Helpers ---

type provenance struct {
	byRule map[string]map[string]bool
}

func newProvenance() *provenance {
	return &provenance{byRule: map[string]map[string]bool{}}
}

func (p *provenance) add(rule, adrID string) {
	if p.byRule[rule] == nil {
		p.byRule[rule] = map[string]bool{}
	}
	p.byRule[rule][adrID] = true
}

func (p *provenance) get(rule string) []string {
	return sortedKeys(p.byRule[rule])
}

func (p *provenance) remove(rule string) {
	delete(p.byRule, rule)
}

func (p *provenance) sorted() map[string][]string {
	out := make(map[string][]string, len(p.byRule))
	for rule, ids := range p.byRule {
		out[rule] = sortedKeys(ids)
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedBoundaryKeys(m map[string]policy.BoundaryRule) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mergedIDs(base []string, extra ...string) []string {
	set := map[string]bool{}
	for _, id := range base {
		set[id] = true
	}
	for _, id := range extra {
		set[id] = true
	}
	return sortedKeys(set)
}

// dedupeConflicts collapses repeated (rule, kind) records; contributing
// ADR sets are unioned.
func dedupeConflicts(conflicts []Conflict) []Conflict {
	byKey := map[string]*Conflict{}
	var order []string
	for _, c := range conflicts {
		key := c.Kind + "|" + c.Rule
		if existing, ok := byKey[key]; ok {
			existing.ADRs = mergedIDs(existing.ADRs, c.ADRs...)
			continue
		}
		clone := c
		byKey[key] = &clone
		order = append(order, key)
	}
	out := make([]Conflict, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}

func sortConflicts(conflicts []Conflict) []Conflict {
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Kind != conflicts[j].Kind {
			return conflicts[i].Kind < conflicts[j].Kind
		}
		return conflicts[i].Rule < conflicts[j].Rule
	})
	return conflicts
}
