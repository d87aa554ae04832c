package taxonomy

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/username/recupera/backend/src/models"
)

// MatchKind tells the classifier which line-item field a rule inspects.
type MatchKind string

const (
	MatchCST       MatchKind = "cst"        // explicit tax-situation code (authoritative)
	MatchCFOP      MatchKind = "cfop"       // operation-type code (authoritative)
	MatchNCMPrefix MatchKind = "ncm-prefix" // product code prefix (corroborating)
	MatchHeuristic MatchKind = "heuristica" // indirect signal, e.g. nonzero tax on ambiguous record
)

// Rule is one entry of the rule catalog. Rules are not mutually exclusive
// across tax types; the classifier evaluates every active rule against
// every line item.
type Rule struct {
	Code       string           `toml:"code"`
	TaxType    models.TaxType   `toml:"tax_type"`
	Treatment  models.Treatment `toml:"treatment"`
	Match      MatchKind        `toml:"match"`
	Values     []string         `toml:"values"`
	LegalBasis string           `toml:"legal_basis"`
	Active     bool             `toml:"active"`
}

// Exclusion marks a rule/regime pair for which the proportional-allocation
// technique is legally unavailable. A matched rule on the exclusion list
// yields a suppressed-rule notice instead of a credit.
type Exclusion struct {
	RuleCode string           `toml:"rule_code"`
	Regime   models.TaxRegime `toml:"regime"`
	Reason   string           `toml:"reason"`
}

// RuleSet is one versioned rule catalog. Loaded once and passed
// explicitly into each call; never held as ambient global state.
type RuleSet struct {
	Version    string      `toml:"version"`
	Rules      []Rule      `toml:"rules"`
	Exclusions []Exclusion `toml:"exclusions"`
}

// Load reads a rule catalog from a TOML file.
func Load(path string) (*RuleSet, error) {
	var rs RuleSet
	if _, err := toml.DecodeFile(path, &rs); err != nil {
		return nil, fmt.Errorf("failed to load rule catalog from %s: %w", path, err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule catalog %s: %w", path, err)
	}
	return &rs, nil
}

// Validate checks the catalog for structural problems before it is put
// into service.
func (rs *RuleSet) Validate() error {
	if rs.Version == "" {
		return fmt.Errorf("catalog version is required")
	}
	seen := make(map[string]bool, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.Code == "" {
			return fmt.Errorf("rule with empty code")
		}
		if seen[r.Code] {
			return fmt.Errorf("duplicate rule code %q", r.Code)
		}
		seen[r.Code] = true
		switch r.Match {
		case MatchCST, MatchCFOP, MatchNCMPrefix, MatchHeuristic:
		default:
			return fmt.Errorf("rule %s: unknown match kind %q", r.Code, r.Match)
		}
		if r.Match != MatchHeuristic && len(r.Values) == 0 {
			return fmt.Errorf("rule %s: no match values", r.Code)
		}
		if table := knownCodes(r.TaxType, r.Match, r.Treatment); table != nil {
			for _, v := range r.Values {
				code := NormalizeCST(v)
				if r.Match == MatchCFOP {
					code = NormalizeCode(v)
				}
				if !table[code] {
					return fmt.Errorf("rule %s: code %q is not a known %s code for treatment %s",
						r.Code, v, r.TaxType, r.Treatment)
				}
			}
		}
	}
	for _, e := range rs.Exclusions {
		if e.RuleCode == "" || e.Regime == "" {
			return fmt.Errorf("exclusion with empty rule code or regime")
		}
		if e.Reason == "" {
			return fmt.Errorf("exclusion %s/%s: reason is required", e.RuleCode, e.Regime)
		}
	}
	return nil
}

// ActiveRules returns the rules currently in force.
func (rs *RuleSet) ActiveRules() []Rule {
	active := make([]Rule, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.Active {
			active = append(active, r)
		}
	}
	return active
}

// ExclusionFor looks up the exclusion entry for a rule under a regime.
func (rs *RuleSet) ExclusionFor(ruleCode string, regime models.TaxRegime) (Exclusion, bool) {
	for _, e := range rs.Exclusions {
		if e.RuleCode == ruleCode && e.Regime == regime {
			return e, true
		}
	}
	return Exclusion{}, false
}
