// Package credits turns classification output into recoverable currency
// amounts. Blended-rate taxpayers pay their taxes as one percentage of
// total revenue, so a per-line subtraction is impossible: the engine
// allocates the declared (or estimated) tax paid per tax type in
// proportion to the revenue share flagged as improperly taxed.
package credits

import (
	"sort"

	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/taxonomy"
	"github.com/username/recupera/backend/src/utils"
)

// DefaultRepartition is the share of the blended rate attributable to
// each tax type (Anexo I repartition table, LC 123/2006).
var DefaultRepartition = map[models.TaxType]float64{
	models.TaxPIS:    0.0276,
	models.TaxCOFINS: 0.1274,
	models.TaxICMS:   0.3400,
}

// Pseudo-rule codes for credits derived from declared exception totals of
// a declaration extract, where no line items exist to classify.
const (
	RulePISMonoDeclared    = "PIS-MONO-DECL"
	RuleCOFINSMonoDeclared = "COFINS-MONO-DECL"
	RuleICMSSTDeclared     = "ICMS-ST-DECL"
)

var declaredBasis = map[string]string{
	RulePISMonoDeclared:    "Lei 10.147/2000, art. 2º; LC 123/2006, art. 18, § 4º-A, I",
	RuleCOFINSMonoDeclared: "Lei 10.147/2000, art. 2º; LC 123/2006, art. 18, § 4º-A, I",
	RuleICMSSTDeclared:     "LC 123/2006, art. 18, § 4º-A, I; LC 87/1996, art. 6º",
}

// ruleGroup accumulates the matched revenue for one (rule, tax type)
// combination in a period.
type ruleGroup struct {
	ruleCode   string
	taxType    models.TaxType
	treatment  models.Treatment
	legalBasis string
	revenue    float64
	claimed    float64
	heuristic  bool
}

// ComputeCredits applies the proportional allocation for one reporting
// period. A period with zero declared revenue or zero improper share
// yields no credits; that is data, not an error. Matched rules excluded
// for the company's regime are reported in the suppressed list instead of
// emitting a credit.
func ComputeCredits(
	classified []models.ClassificationResult,
	totals *models.PeriodTotals,
	regime models.TaxRegime,
	ruleSet *taxonomy.RuleSet,
) ([]models.RecoverableCredit, []models.SuppressedRule) {
	if totals == nil || totals.GrossRevenue <= 0 {
		return nil, nil
	}

	groups := collectGroups(classified, totals, ruleSet)

	var credits []models.RecoverableCredit
	var suppressed []models.SuppressedRule

	for _, g := range groups {
		if excl, found := ruleSet.ExclusionFor(g.ruleCode, regime); found {
			suppressed = append(suppressed, models.SuppressedRule{
				RuleCode: g.ruleCode,
				TaxType:  g.taxType,
				Regime:   regime,
				Reason:   excl.Reason,
			})
			continue
		}

		if g.treatment == models.TreatmentCreditoInsumo {
			// input credits are explicit per-document values, not an
			// allocation over revenue
			if g.claimed <= 0 {
				continue
			}
			credits = append(credits, models.RecoverableCredit{
				Period:           totals.Period,
				RuleCode:         g.ruleCode,
				TaxType:          g.taxType,
				OriginalValue:    utils.Round2(g.claimed),
				RecoverableValue: utils.Round2(g.claimed),
				LegalBasis:       g.legalBasis,
				Confidence:       models.ConfidenceHigh,
				Detail: models.CreditDetail{
					BaseRevenue:  utils.Round2(g.revenue),
					RevenueShare: 1,
				},
			})
			continue
		}

		share := g.revenue / totals.GrossRevenue
		if share <= 0 {
			continue
		}
		if share > 1 {
			share = 1
		}

		taxPaid, rate, repart, estimated, ok := taxPaidForType(g.taxType, totals)
		if !ok || taxPaid <= 0 {
			continue
		}

		confidence := models.ConfidenceHigh // closed-form regulatory formula
		if estimated {
			// declared totals were absent and the tax paid is itself an
			// estimate; do not overstate certainty
			confidence = models.ConfidenceMedium
		}
		if g.heuristic {
			confidence = models.ConfidenceLow
		}

		credits = append(credits, models.RecoverableCredit{
			Period:           totals.Period,
			RuleCode:         g.ruleCode,
			TaxType:          g.taxType,
			OriginalValue:    utils.Round2(taxPaid),
			RecoverableValue: utils.Round2(taxPaid * share),
			LegalBasis:       g.legalBasis,
			Confidence:       confidence,
			Detail: models.CreditDetail{
				BaseRevenue:    utils.Round2(g.revenue),
				EffectiveRate:  rate,
				RepartitionPct: repart,
				RevenueShare:   share,
				EstimatedBasis: estimated,
			},
		})
	}

	return credits, suppressed
}

// collectGroups aggregates matched revenue per (rule, tax type). Declared
// exception totals from the source document are authoritative and take
// the place of line-item sums for the treatments they cover.
func collectGroups(classified []models.ClassificationResult, totals *models.PeriodTotals, ruleSet *taxonomy.RuleSet) []ruleGroup {
	byKey := make(map[string]*ruleGroup)
	var order []string

	add := func(g ruleGroup) *ruleGroup {
		key := g.ruleCode + "|" + string(g.taxType)
		if existing, ok := byKey[key]; ok {
			return existing
		}
		byKey[key] = &g
		order = append(order, key)
		return byKey[key]
	}

	// declared exception categories (declaration extract path)
	if totals.MonofasicoRevenue != nil && *totals.MonofasicoRevenue > 0 {
		g := add(ruleGroup{ruleCode: RulePISMonoDeclared, taxType: models.TaxPIS,
			treatment: models.TreatmentMonofasico, legalBasis: declaredBasis[RulePISMonoDeclared]})
		g.revenue = *totals.MonofasicoRevenue
		g = add(ruleGroup{ruleCode: RuleCOFINSMonoDeclared, taxType: models.TaxCOFINS,
			treatment: models.TreatmentMonofasico, legalBasis: declaredBasis[RuleCOFINSMonoDeclared]})
		g.revenue = *totals.MonofasicoRevenue
	}
	if totals.STRevenue != nil && *totals.STRevenue > 0 {
		g := add(ruleGroup{ruleCode: RuleICMSSTDeclared, taxType: models.TaxICMS,
			treatment: models.TreatmentSubstituicao, legalBasis: declaredBasis[RuleICMSSTDeclared]})
		g.revenue = *totals.STRevenue
	}

	// classified line items. Within one tax type a line's revenue is
	// claimed by at most one rule, the one matched through the strongest
	// signal; overlapping rules must not allocate the same tax paid twice.
	type itemTax struct {
		line int
		tax  models.TaxType
	}
	best := make(map[itemTax]models.ClassificationResult)
	var itemOrder []itemTax
	for _, c := range classified {
		// declared totals already cover these combinations
		if skipClassifiedFor(c, totals) {
			continue
		}
		k := itemTax{line: c.Item.Line, tax: c.TaxType}
		cur, seen := best[k]
		if !seen {
			best[k] = c
			itemOrder = append(itemOrder, k)
			continue
		}
		if signalRank(c.Signal) < signalRank(cur.Signal) {
			best[k] = c
		}
	}
	for _, k := range itemOrder {
		c := best[k]
		g := add(ruleGroup{ruleCode: c.RuleCode, taxType: c.TaxType,
			treatment: c.Treatment, legalBasis: legalBasisFor(c.RuleCode, ruleSet)})
		g.revenue += c.Item.Revenue
		if c.Item.ClaimedCredit != nil {
			g.claimed += *c.Item.ClaimedCredit
		}
		if c.Signal == "heuristica" {
			g.heuristic = true
		}
	}

	groups := make([]ruleGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	// deterministic output order regardless of map iteration
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].taxType != groups[j].taxType {
			return groups[i].taxType < groups[j].taxType
		}
		return groups[i].ruleCode < groups[j].ruleCode
	})
	return groups
}

// signalRank orders match signals by how authoritative they are on the
// source document: situation code, then operation code, then product
// code, then heuristic.
func signalRank(signal string) int {
	switch signal {
	case "cst":
		return 0
	case "cfop":
		return 1
	case "ncm":
		return 2
	default:
		return 3
	}
}

// skipClassifiedFor reports whether a classification is redundant because
// the document declared an authoritative total for the same tax type and
// treatment.
func skipClassifiedFor(c models.ClassificationResult, totals *models.PeriodTotals) bool {
	switch {
	case c.Treatment == models.TreatmentMonofasico &&
		(c.TaxType == models.TaxPIS || c.TaxType == models.TaxCOFINS):
		return totals.MonofasicoRevenue != nil && *totals.MonofasicoRevenue > 0
	case c.Treatment == models.TreatmentSubstituicao && c.TaxType == models.TaxICMS:
		return totals.STRevenue != nil && *totals.STRevenue > 0
	}
	return false
}

func legalBasisFor(ruleCode string, ruleSet *taxonomy.RuleSet) string {
	for _, r := range ruleSet.Rules {
		if r.Code == ruleCode {
			return r.LegalBasis
		}
	}
	return ""
}

// taxPaidForType resolves the tax paid in the period for one tax type:
// the declared repartition amount when the document carried it, otherwise
// estimated as revenue × effective rate × repartition share.
func taxPaidForType(tax models.TaxType, totals *models.PeriodTotals) (paid, rate, repart float64, estimated, ok bool) {
	repart = DefaultRepartition[tax]
	if declared, found := totals.Repartition[tax]; found && declared > 0 {
		if totals.EffectiveRate != nil {
			rate = *totals.EffectiveRate
		}
		return declared, rate, repart, false, true
	}
	if totals.EffectiveRate == nil || *totals.EffectiveRate <= 0 {
		return 0, 0, repart, false, false
	}
	rate = *totals.EffectiveRate
	return totals.GrossRevenue * rate * repart, rate, repart, true, true
}
