// Package classifier evaluates normalized line items against a rule
// catalog and tags each item with the tax-treatment categories it
// triggers. Stateless per call: the catalog is supplied externally and
// may be swapped between calls without a redeployment.
package classifier

import (
	"strings"

	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/taxonomy"
)

// numeric confidence scores per tier
const (
	scoreHigh   = 0.95
	scoreMedium = 0.70
	scoreLow    = 0.40
)

// Classify evaluates every active rule against every line item. Rules are
// never short-circuited on first match: one line can simultaneously be
// single-phase for a federal tax and substitution-taxed for the state
// tax. Within one tax type an explicit situation/operation code match is
// authoritative and displaces product-code and heuristic matches, because
// the situation code is the declared indicator on the source document
// while the product code only corroborates.
func Classify(items []models.LineItem, ruleSet *taxonomy.RuleSet) []models.ClassificationResult {
	rules := ruleSet.ActiveRules()
	var results []models.ClassificationResult

	for _, item := range items {
		var itemMatches []models.ClassificationResult
		authoritative := make(map[models.TaxType]bool)

		for _, rule := range rules {
			signal, ok := matches(item, rule)
			if !ok {
				continue
			}
			res := models.ClassificationResult{
				Item:      item,
				RuleCode:  rule.Code,
				TaxType:   rule.TaxType,
				Treatment: rule.Treatment,
				Signal:    signal,
			}
			switch rule.Match {
			case taxonomy.MatchCST, taxonomy.MatchCFOP:
				res.Confidence = models.ConfidenceHigh
				res.Score = scoreHigh
				authoritative[rule.TaxType] = true
			case taxonomy.MatchNCMPrefix:
				res.Confidence = models.ConfidenceMedium
				res.Score = scoreMedium
			default:
				res.Confidence = models.ConfidenceLow
				res.Score = scoreLow
			}
			itemMatches = append(itemMatches, res)
		}

		for _, m := range itemMatches {
			if m.Confidence != models.ConfidenceHigh && authoritative[m.TaxType] {
				continue // displaced by an explicit code match for the same tax
			}
			results = append(results, m)
		}
	}
	return results
}

// matches reports whether a rule triggers for an item, and through which
// signal.
func matches(item models.LineItem, rule taxonomy.Rule) (string, bool) {
	switch rule.Match {
	case taxonomy.MatchCST:
		cst := cstFor(item, rule.TaxType)
		if cst == "" {
			return "", false
		}
		for _, v := range rule.Values {
			if cst == taxonomy.NormalizeCST(v) {
				return "cst", true
			}
		}
	case taxonomy.MatchCFOP:
		if item.CFOP == "" {
			return "", false
		}
		for _, v := range rule.Values {
			if item.CFOP == taxonomy.NormalizeCode(v) {
				return "cfop", true
			}
		}
	case taxonomy.MatchNCMPrefix:
		ncm := taxonomy.NormalizeCode(item.NCM)
		if ncm == "" {
			return "", false
		}
		for _, prefix := range rule.Values {
			if strings.HasPrefix(ncm, taxonomy.NormalizeCode(prefix)) {
				return "ncm", true
			}
		}
	case taxonomy.MatchHeuristic:
		// indirect signal: tax was charged on a record that carries no
		// situation code for that tax
		if cstFor(item, rule.TaxType) == "" && chargedFor(item, rule.TaxType) > 0 {
			return "heuristica", true
		}
	}
	return "", false
}

func cstFor(item models.LineItem, tax models.TaxType) string {
	switch tax {
	case models.TaxPIS:
		return item.CSTPIS
	case models.TaxCOFINS:
		return item.CSTCOFINS
	case models.TaxICMS:
		return item.CSTICMS
	}
	return ""
}

func chargedFor(item models.LineItem, tax models.TaxType) float64 {
	switch tax {
	case models.TaxPIS:
		return item.PISCharged
	case models.TaxCOFINS:
		return item.COFINSCharged
	case models.TaxICMS:
		return item.ICMSCharged
	}
	return 0
}
