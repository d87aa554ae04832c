package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/taxonomy"
)

func testRuleSet() *taxonomy.RuleSet {
	return &taxonomy.RuleSet{
		Version: "teste",
		Rules: []taxonomy.Rule{
			{Code: "PIS-MONO-CST", TaxType: models.TaxPIS, Treatment: models.TreatmentMonofasico,
				Match: taxonomy.MatchCST, Values: []string{"04"}, Active: true},
			{Code: "PIS-MONO-NCM", TaxType: models.TaxPIS, Treatment: models.TreatmentMonofasico,
				Match: taxonomy.MatchNCMPrefix, Values: []string{"3004", "2202"}, Active: true},
			{Code: "PIS-VAL-HEUR", TaxType: models.TaxPIS, Treatment: models.TreatmentMonofasico,
				Match: taxonomy.MatchHeuristic, Active: true},
			{Code: "ICMS-ST-CST", TaxType: models.TaxICMS, Treatment: models.TreatmentSubstituicao,
				Match: taxonomy.MatchCST, Values: []string{"60"}, Active: true},
			{Code: "ICMS-ST-CFOP", TaxType: models.TaxICMS, Treatment: models.TreatmentSubstituicao,
				Match: taxonomy.MatchCFOP, Values: []string{"5405"}, Active: true},
			{Code: "PIS-DESATIVADA", TaxType: models.TaxPIS, Treatment: models.TreatmentMonofasico,
				Match: taxonomy.MatchCST, Values: []string{"04"}, Active: false},
		},
	}
}

func codesFor(results []models.ClassificationResult) []string {
	codes := make([]string, 0, len(results))
	for _, r := range results {
		codes = append(codes, r.RuleCode)
	}
	return codes
}

func TestClassifyCSTDisplacesNCM(t *testing.T) {
	items := []models.LineItem{{
		Line: 1, NCM: "30049069", CSTPIS: "04", Revenue: 1000,
	}}

	results := Classify(items, testRuleSet())
	require.Len(t, results, 1)
	assert.Equal(t, "PIS-MONO-CST", results[0].RuleCode)
	assert.Equal(t, models.ConfidenceHigh, results[0].Confidence)
	assert.Equal(t, 0.95, results[0].Score)
	assert.Equal(t, "cst", results[0].Signal)
}

func TestClassifyNCMAloneIsMedium(t *testing.T) {
	// situation code present but not an exception code: the product code
	// still corroborates single-phase treatment
	items := []models.LineItem{{
		Line: 1, NCM: "22021000", CSTPIS: "01", Revenue: 500,
	}}

	results := Classify(items, testRuleSet())
	require.Len(t, results, 1)
	assert.Equal(t, "PIS-MONO-NCM", results[0].RuleCode)
	assert.Equal(t, models.ConfidenceMedium, results[0].Confidence)
	assert.Equal(t, 0.70, results[0].Score)
	assert.Equal(t, "ncm", results[0].Signal)
}

func TestClassifyMultipleTaxTypesOnOneItem(t *testing.T) {
	// a single line can be single-phase for the federal tax and
	// substitution-taxed for the state tax
	items := []models.LineItem{{
		Line: 1, NCM: "22021000", CFOP: "5405", CSTPIS: "04", CSTICMS: "60", Revenue: 2500,
	}}

	results := Classify(items, testRuleSet())
	codes := codesFor(results)
	assert.Contains(t, codes, "PIS-MONO-CST")
	assert.Contains(t, codes, "ICMS-ST-CST")
	assert.Contains(t, codes, "ICMS-ST-CFOP")
	assert.NotContains(t, codes, "PIS-MONO-NCM")
}

func TestClassifyHeuristicWhenNoSituationCode(t *testing.T) {
	items := []models.LineItem{{
		Line: 1, Description: "Crédito PIS código 101", Revenue: 10000, PISCharged: 165,
	}}

	results := Classify(items, testRuleSet())
	require.Len(t, results, 1)
	assert.Equal(t, "PIS-VAL-HEUR", results[0].RuleCode)
	assert.Equal(t, models.ConfidenceLow, results[0].Confidence)
	assert.Equal(t, "heuristica", results[0].Signal)
}

func TestClassifyInactiveRuleIgnored(t *testing.T) {
	rs := &taxonomy.RuleSet{
		Version: "teste",
		Rules: []taxonomy.Rule{
			{Code: "PIS-DESATIVADA", TaxType: models.TaxPIS, Treatment: models.TreatmentMonofasico,
				Match: taxonomy.MatchCST, Values: []string{"04"}, Active: false},
		},
	}
	items := []models.LineItem{{Line: 1, CSTPIS: "04", Revenue: 100}}
	assert.Empty(t, Classify(items, rs))
}

func TestClassifyNoMatches(t *testing.T) {
	items := []models.LineItem{{Line: 1, NCM: "9999", CSTPIS: "01", Revenue: 100}}
	assert.Empty(t, Classify(items, testRuleSet()))
}
