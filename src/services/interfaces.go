package services

import (
	"io"

	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/taxonomy"
)

// AnalysisService runs the full document pipeline: parse, classify,
// compute credits, persist and cache the resulting summary. The regime
// is the company's known taxation regime; a regime declared inside the
// document takes precedence over it.
type AnalysisService interface {
	ProcessUpload(fileReader io.Reader, companyID string, kind models.DocumentKind, regime models.TaxRegime) (*models.CreditSummary, error)
	GetLatestSummary(companyID string) (*models.CreditSummary, error)
	InvalidateCompanyCache(companyID string)
}

// RuleService owns the rule catalog lifecycle. Current never returns
// nil after a successful construction.
type RuleService interface {
	Current() *taxonomy.RuleSet
	Refresh() (string, error)
	Version() string
}

// SimulationService compares tax regimes for a company snapshot.
type SimulationService interface {
	RunComparison(input models.SimulationInput) (*models.ComparisonResult, error)
}
