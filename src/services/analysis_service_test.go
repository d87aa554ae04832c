package services

import (
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/recupera/backend/src/database"
	"github.com/username/recupera/backend/src/logger"
	"github.com/username/recupera/backend/src/models"
)

const sampleExtract = `PGDAS-D - Extrato da Apuracao
CNPJ: 12.345.678/0001-99
Razao Social: FARMACIA MODELO LTDA
Periodo de Apuracao (PA): 01/2026
Receita Bruta do PA (RPA): R$ 100.000,00
Aliquota Efetiva (%): 6,54%
Receita com Tributacao Monofasica: R$ 40.000,00
Receita com Substituicao Tributaria: R$ 10.000,00
PIS: R$ 180,50
COFINS: R$ 833,20
ICMS: R$ 2.223,60
`

func newTestAnalysisService(t *testing.T) AnalysisService {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(":memory:")

	ruleService, err := NewRuleService("../../data/rule_catalog.toml")
	require.NoError(t, err)

	summaryCache := cache.New(time.Minute, time.Minute)
	return NewAnalysisService(ruleService, summaryCache)
}

func TestProcessUploadExtract(t *testing.T) {
	svc := newTestAnalysisService(t)

	summary, err := svc.ProcessUpload(strings.NewReader(sampleExtract), "12345678000199", models.KindPgdas, models.RegimeSimples)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DocumentsAnalyzed)
	assert.Equal(t, 0, summary.DocumentsFailed)
	assert.Equal(t, 3, summary.CreditsFound)
	// 180.50×0.4 + 833.20×0.4 + 2223.60×0.1
	assert.InDelta(t, 627.84, summary.TotalRecoverable, 0.01)
	assert.NotEmpty(t, summary.Disclaimer)
	for _, c := range summary.Credits {
		assert.Equal(t, models.ConfidenceHigh, c.Confidence)
		assert.Equal(t, "01/2026", c.Period)
	}
}

func TestProcessUploadUsesCompanyRegimeWhenDocumentSilent(t *testing.T) {
	// invoice batches never declare a regime; the exclusion gate must use
	// the company attribute instead
	const batch = `{
		"cnpj": "12.345.678/0001-99",
		"razaoSocial": "FARMACIA MODELO LTDA",
		"periodo": "01/2026",
		"itens": [
			{"ncm": "3004.90.69", "cstPis": "50", "descricao": "Insumo", "valorProduto": 10000}
		]
	}`

	svc := newTestAnalysisService(t)

	summary, err := svc.ProcessUpload(strings.NewReader(batch), "12345678000199", models.KindNfe, models.RegimeSimples)
	require.NoError(t, err)
	require.Len(t, summary.SuppressedRules, 1)
	assert.Equal(t, "PIS-CRED-INSUMO", summary.SuppressedRules[0].RuleCode)
	assert.Equal(t, models.RegimeSimples, summary.SuppressedRules[0].Regime)

	// without a known regime the exclusion pair cannot match
	summary, err = svc.ProcessUpload(strings.NewReader(batch), "12345678000199", models.KindNfe, "")
	require.NoError(t, err)
	assert.Empty(t, summary.SuppressedRules)
}

func TestProcessUploadUnknownKind(t *testing.T) {
	svc := newTestAnalysisService(t)

	_, err := svc.ProcessUpload(strings.NewReader("x"), "12345678000199", models.DocumentKind("xml"), models.RegimeSimples)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDocumentKind)
}

func TestProcessUploadMalformedDocument(t *testing.T) {
	svc := newTestAnalysisService(t)

	_, err := svc.ProcessUpload(strings.NewReader("sem rotulo algum"), "12345678000199", models.KindPgdas, models.RegimeSimples)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestGetLatestSummaryRoundTrip(t *testing.T) {
	svc := newTestAnalysisService(t)
	companyID := "12345678000199"

	uploaded, err := svc.ProcessUpload(strings.NewReader(sampleExtract), companyID, models.KindPgdas, models.RegimeSimples)
	require.NoError(t, err)

	// cache hit path
	cached, err := svc.GetLatestSummary(companyID)
	require.NoError(t, err)
	assert.Equal(t, uploaded.TotalRecoverable, cached.TotalRecoverable)

	// cold path: rebuild from the persisted rows
	svc.InvalidateCompanyCache(companyID)
	rebuilt, err := svc.GetLatestSummary(companyID)
	require.NoError(t, err)
	assert.InDelta(t, uploaded.TotalRecoverable, rebuilt.TotalRecoverable, 0.001)
	assert.Equal(t, uploaded.CreditsFound, rebuilt.CreditsFound)
	assert.Equal(t, uploaded.ByTaxType, rebuilt.ByTaxType)
}

func TestGetLatestSummaryNoAnalysis(t *testing.T) {
	svc := newTestAnalysisService(t)

	_, err := svc.GetLatestSummary("00000000000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAnalysisFound)
}
