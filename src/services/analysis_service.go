package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/recupera/backend/src/classifier"
	"github.com/username/recupera/backend/src/credits"
	"github.com/username/recupera/backend/src/database"
	"github.com/username/recupera/backend/src/logger"
	"github.com/username/recupera/backend/src/metrics"
	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/parsers"
)

const (
	ckLatestSummary = "agg_latest_summary_company_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type analysisServiceImpl struct {
	ruleService  RuleService
	summaryCache *cache.Cache
}

func NewAnalysisService(ruleService RuleService, summaryCache *cache.Cache) AnalysisService {
	return &analysisServiceImpl{
		ruleService:  ruleService,
		summaryCache: summaryCache,
	}
}

func (s *analysisServiceImpl) ProcessUpload(fileReader io.Reader, companyID string, kind models.DocumentKind, regime models.TaxRegime) (*models.CreditSummary, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "companyID", companyID, "kind", kind, "regime", regime)

	parser, err := parsers.GetParser(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDocumentKind, err)
	}

	doc, err := parser.Parse(fileReader)
	if err != nil {
		metrics.DocumentsFailed.WithLabelValues(string(kind)).Inc()
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	metrics.DocumentsParsed.WithLabelValues(string(kind)).Inc()
	if len(doc.FieldErrors) > 0 {
		logger.L.Warn("Document parsed with field errors",
			"companyID", companyID, "kind", kind, "fieldErrors", len(doc.FieldErrors))
	}

	// a regime declared inside the document is authoritative; fall back
	// to the company attribute for layouts that never carry one
	effectiveRegime := doc.Header.DeclaredRegime
	if effectiveRegime == "" {
		effectiveRegime = regime
	}

	ruleSet := s.ruleService.Current()
	classified := classifier.Classify(doc.Items, ruleSet)
	creditList, suppressed := credits.ComputeCredits(classified, doc.Totals, effectiveRegime, ruleSet)
	summary := credits.BuildSummary(creditList, suppressed, 1, 0)

	metrics.CreditsComputed.Add(float64(len(creditList)))
	metrics.RecoverableAmount.Add(summary.TotalRecoverable)

	analysisID := uuid.New().String()
	if err := s.persistAnalysis(analysisID, companyID, kind, effectiveRegime, doc, summary); err != nil {
		return nil, err
	}

	s.InvalidateCompanyCache(companyID)
	s.summaryCache.Set(fmt.Sprintf(ckLatestSummary, companyID), summary, DefaultCacheExpiration)

	logger.L.Info("ProcessUpload END",
		"companyID", companyID, "analysisID", analysisID,
		"creditsFound", summary.CreditsFound, "totalRecoverable", summary.TotalRecoverable,
		"duration", time.Since(overallStartTime))
	return summary, nil
}

func (s *analysisServiceImpl) persistAnalysis(analysisID, companyID string, kind models.DocumentKind, regime models.TaxRegime, doc *models.ParsedDocument, summary *models.CreditSummary) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.Exec(`INSERT INTO analyses
		(id, company_id, document_kind, cnpj, period_start, period_end, declared_regime,
		 documents_analyzed, documents_failed, credits_found, total_recoverable, rule_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		analysisID, companyID, string(kind), doc.Header.CNPJ,
		doc.Header.PeriodStart.Format("2006-01-02"), doc.Header.PeriodEnd.Format("2006-01-02"),
		string(regime),
		summary.DocumentsAnalyzed, summary.DocumentsFailed,
		summary.CreditsFound, summary.TotalRecoverable, s.ruleService.Version())
	if err != nil {
		return fmt.Errorf("error inserting analysis %s: %w", analysisID, err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO recoverable_credits
		(analysis_id, period, rule_code, tax_type, original_value, recoverable_value,
		 legal_basis, confidence, base_revenue, effective_rate, repartition_pct, revenue_share, estimated_basis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing credit insert statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range summary.Credits {
		_, err := stmt.Exec(analysisID, c.Period, c.RuleCode, string(c.TaxType),
			c.OriginalValue, c.RecoverableValue, c.LegalBasis, string(c.Confidence),
			c.Detail.BaseRevenue, c.Detail.EffectiveRate, c.Detail.RepartitionPct,
			c.Detail.RevenueShare, c.Detail.EstimatedBasis)
		if err != nil {
			return fmt.Errorf("error inserting credit (rule: %s): %w", c.RuleCode, err)
		}
	}

	for _, sr := range summary.SuppressedRules {
		_, err := dbTx.Exec(`INSERT INTO suppressed_rules (analysis_id, rule_code, tax_type, regime, reason)
			VALUES (?, ?, ?, ?, ?)`,
			analysisID, sr.RuleCode, string(sr.TaxType), string(sr.Regime), sr.Reason)
		if err != nil {
			return fmt.Errorf("error inserting suppressed rule (rule: %s): %w", sr.RuleCode, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing analysis: %w", err)
	}
	return nil
}

// InvalidateCompanyCache clears cached summaries for a company, forcing a
// rebuild from the database on the next request.
func (s *analysisServiceImpl) InvalidateCompanyCache(companyID string) {
	s.summaryCache.Delete(fmt.Sprintf(ckLatestSummary, companyID))
	logger.L.Info("Invalidated summary cache for company", "companyID", companyID)
}

func (s *analysisServiceImpl) GetLatestSummary(companyID string) (*models.CreditSummary, error) {
	cacheKey := fmt.Sprintf(ckLatestSummary, companyID)
	if cached, found := s.summaryCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for GetLatestSummary", "companyID", companyID)
		return cached.(*models.CreditSummary), nil
	}
	logger.L.Info("Cache miss for GetLatestSummary, rebuilding from DB", "companyID", companyID)

	summary, err := s.rebuildLatestSummary(companyID)
	if err != nil {
		return nil, err
	}

	s.summaryCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *analysisServiceImpl) rebuildLatestSummary(companyID string) (*models.CreditSummary, error) {
	var analysisID string
	var documentsAnalyzed, documentsFailed int
	err := database.DB.QueryRow(`SELECT id, documents_analyzed, documents_failed
		FROM analyses WHERE company_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		companyID).Scan(&analysisID, &documentsAnalyzed, &documentsFailed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoAnalysisFound
		}
		return nil, fmt.Errorf("error querying latest analysis for company %s: %w", companyID, err)
	}

	creditList, err := fetchAnalysisCredits(analysisID)
	if err != nil {
		return nil, err
	}
	suppressed, err := fetchSuppressedRules(analysisID)
	if err != nil {
		return nil, err
	}

	return credits.BuildSummary(creditList, suppressed, documentsAnalyzed, documentsFailed), nil
}

func fetchAnalysisCredits(analysisID string) ([]models.RecoverableCredit, error) {
	rows, err := database.DB.Query(`SELECT period, rule_code, tax_type, original_value, recoverable_value,
		legal_basis, confidence, base_revenue, effective_rate, repartition_pct, revenue_share, estimated_basis
		FROM recoverable_credits WHERE analysis_id = ? ORDER BY id ASC`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("error querying credits for analysis %s: %w", analysisID, err)
	}
	defer rows.Close()

	var creditList []models.RecoverableCredit
	for rows.Next() {
		var c models.RecoverableCredit
		var taxType, confidence string
		scanErr := rows.Scan(&c.Period, &c.RuleCode, &taxType, &c.OriginalValue, &c.RecoverableValue,
			&c.LegalBasis, &confidence, &c.Detail.BaseRevenue, &c.Detail.EffectiveRate,
			&c.Detail.RepartitionPct, &c.Detail.RevenueShare, &c.Detail.EstimatedBasis)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning credit row for analysis %s: %w", analysisID, scanErr)
		}
		c.TaxType = models.TaxType(taxType)
		c.Confidence = models.Confidence(confidence)
		creditList = append(creditList, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over credit rows for analysis %s: %w", analysisID, err)
	}
	return creditList, nil
}

func fetchSuppressedRules(analysisID string) ([]models.SuppressedRule, error) {
	rows, err := database.DB.Query(`SELECT rule_code, tax_type, regime, reason
		FROM suppressed_rules WHERE analysis_id = ? ORDER BY id ASC`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("error querying suppressed rules for analysis %s: %w", analysisID, err)
	}
	defer rows.Close()

	var suppressed []models.SuppressedRule
	for rows.Next() {
		var sr models.SuppressedRule
		var taxType, regime string
		if scanErr := rows.Scan(&sr.RuleCode, &taxType, &regime, &sr.Reason); scanErr != nil {
			return nil, fmt.Errorf("error scanning suppressed rule row for analysis %s: %w", analysisID, scanErr)
		}
		sr.TaxType = models.TaxType(taxType)
		sr.Regime = models.TaxRegime(regime)
		suppressed = append(suppressed, sr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over suppressed rule rows for analysis %s: %w", analysisID, err)
	}
	return suppressed, nil
}
