package credits

import (
	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/utils"
)

// BuildSummary aggregates the credits of one analysis run into the
// headline figures the caller displays: total recoverable, breakdowns by
// confidence tier and tax type, and the suppressed-rules notice. The
// standing disclaimer is always attached.
func BuildSummary(
	creditList []models.RecoverableCredit,
	suppressed []models.SuppressedRule,
	documentsAnalyzed, documentsFailed int,
) *models.CreditSummary {
	summary := &models.CreditSummary{
		ByConfidence:      make(map[models.Confidence]float64),
		ByTaxType:         make(map[models.TaxType]float64),
		CreditsFound:      len(creditList),
		DocumentsAnalyzed: documentsAnalyzed,
		DocumentsFailed:   documentsFailed,
		Credits:           creditList,
		SuppressedRules:   suppressed,
		Disclaimer:        models.Disclaimer,
	}
	if summary.Credits == nil {
		summary.Credits = []models.RecoverableCredit{}
	}
	if summary.SuppressedRules == nil {
		summary.SuppressedRules = []models.SuppressedRule{}
	}

	var total float64
	for _, c := range creditList {
		total += c.RecoverableValue
		summary.ByConfidence[c.Confidence] += c.RecoverableValue
		summary.ByTaxType[c.TaxType] += c.RecoverableValue
	}
	summary.TotalRecoverable = utils.Round2(total)
	for k, v := range summary.ByConfidence {
		summary.ByConfidence[k] = utils.Round2(v)
	}
	for k, v := range summary.ByTaxType {
		summary.ByTaxType[k] = utils.Round2(v)
	}
	return summary
}
