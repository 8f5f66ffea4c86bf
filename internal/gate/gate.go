// Package gate classifies proposed technical choices against the current
// constraints contract.
//
// Evaluation is a pure read of an immutable contract snapshot: no
// mutation, no I/O, safe to call concurrently. An unknown choice is not
// an error — REQUIRES_ADR is the default posture for any significant
// choice that no accepted decision covers yet.
package gate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/HendryAvila/decree/internal/contract"
)

// Verdict is the gate's classification of one choice.
type Verdict string

const (
	// Allowed: the choice is endorsed by an accepted decision or its
	// category is exempt from the ADR requirement.
	Allowed Verdict = "ALLOWED"
	// RequiresADR: nothing covers this choice; document it first.
	RequiresADR Verdict = "REQUIRES_ADR"
	// Blocked: an accepted decision bans this choice.
	Blocked Verdict = "BLOCKED"
)

// Decision is the full gate result for one evaluated choice.
type Decision struct {
	Choice string `json:"choice"`
	// Normalized is the casefolded, alias-resolved form actually
	// matched against the contract.
	Normalized string  `json:"normalized"`
	Verdict    Verdict `json:"verdict"`
	// MatchedRules lists the contract rule keys that produced the
	// verdict, empty for REQUIRES_ADR.
	MatchedRules []string `json:"matched_rules,omitempty"`
	// ADRs lists the originating decision identifiers.
	ADRs []string `json:"adrs,omitempty"`
	// Guidance is a human-readable next step.
	Guidance string `json:"guidance"`
}

// Gate evaluates choices against a contract with repository-level alias
// and category configuration.
type Gate struct {
	aliases map[string]string
	exempt  map[string]bool
}

// New creates a gate. aliases maps informal names to canonical ones;
// exemptCategories lists categories that never require an ADR.
func New(aliases map[string]string, exemptCategories []string) *Gate {
	normalized := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		normalized[strings.ToLower(strings.TrimSpace(alias))] = strings.ToLower(strings.TrimSpace(canonical))
	}
	exempt := make(map[string]bool, len(exemptCategories))
	for _, cat := range exemptCategories {
		exempt[strings.ToLower(strings.TrimSpace(cat))] = true
	}
	return &Gate{aliases: normalized, exempt: exempt}
}

// Normalize casefolds the choice and resolves one level of aliasing.
func (g *Gate) Normalize(choice string) string {
	name := strings.ToLower(strings.TrimSpace(choice))
	if canonical, ok := g.aliases[name]; ok {
		return canonical
	}
	return name
}

// Evaluate classifies one choice against the contract. category is an
// optional hint ("database", "frontend"); it only matters for exemption.
// A nil contract (no build published yet) means nothing is banned and
// nothing endorsed — the default REQUIRES_ADR posture applies.
func (g *Gate) Evaluate(c *contract.Contract, choice, category string) Decision {
	d := Decision{
		Choice:     choice,
		Normalized: g.Normalize(choice),
	}

	if c != nil {
		// Disallow wins over everything, including a prefer entry
		// that should not coexist post-merge but is checked anyway.
		if rules, adrs := g.disallowMatches(c, d.Normalized); len(rules) > 0 {
			d.Verdict = Blocked
			d.MatchedRules = rules
			d.ADRs = adrs
			d.Guidance = fmt.Sprintf(
				"%q is banned by %s. Review the cited decision(s); to change course, supersede them with a new ADR.",
				d.Normalized, strings.Join(adrs, ", "))
			return d
		}

		if contains(c.ImportPrefer, d.Normalized) {
			rule := "prefer:" + d.Normalized
			d.Verdict = Allowed
			d.MatchedRules = []string{rule}
			d.ADRs = c.RuleADRs(rule)
			d.Guidance = fmt.Sprintf("%q is endorsed by %s. Proceed.",
				d.Normalized, strings.Join(d.ADRs, ", "))
			return d
		}
	}

	if category != "" && g.exempt[strings.ToLower(strings.TrimSpace(category))] {
		d.Verdict = Allowed
		d.Guidance = fmt.Sprintf("category %q does not require an ADR. Proceed.", category)
		return d
	}

	d.Verdict = RequiresADR
	d.Guidance = fmt.Sprintf(
		"no accepted decision covers %q. Create an ADR documenting the choice before adopting it.",
		d.Normalized)
	return d
}

// disallowMatches collects every disallow rule hitting the choice, in
// the general import list and every ecosystem list.
func (g *Gate) disallowMatches(c *contract.Contract, name string) (rules, adrs []string) {
	idSet := map[string]bool{}
	if contains(c.ImportDisallow, name) {
		rule := "import:" + name
		rules = append(rules, rule)
		for _, id := range c.RuleADRs(rule) {
			idSet[id] = true
		}
	}
	for eco, list := range c.Ecosystems {
		if contains(list, name) {
			rule := eco + ":" + name
			rules = append(rules, rule)
			for _, id := range c.RuleADRs(rule) {
				idSet[id] = true
			}
		}
	}
	for id := range idSet {
		adrs = append(adrs, id)
	}
	sort.Strings(rules)
	sort.Strings(adrs)
	return rules, adrs
}

func contains(sorted []string, name string) bool {
	for _, v := range sorted {
		if v == name {
			return true
		}
	}
	return false
}
