package sped

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/recupera/backend/src/models"
)

const sampleLedger = `|0000|006|0|||01012026|31012026|FARMACIA MODELO LTDA|12345678000199|SP|
|0110|2|1|1||
|0111|80000,00|0,00|5000,00|0,00|100000,00|
|M100|101|0|10000,00|1,65|0|0|165,00|
|M200|2760,00|
|M500|101|0|10000,00|7,60|0|0|760,00|
|M600|12740,00|
|Z999|registro desconhecido|ignorado|
`

func TestParseLedger(t *testing.T) {
	doc, err := NewParser().Parse(strings.NewReader(sampleLedger))
	require.NoError(t, err)

	assert.Equal(t, models.KindSped, doc.Kind)
	assert.Equal(t, "12345678000199", doc.Header.CNPJ)
	assert.Equal(t, "Farmacia Modelo LTDA", doc.Header.LegalName)
	assert.Equal(t, models.RegimeLucroPresumido, doc.Header.DeclaredRegime)
	assert.Empty(t, doc.FieldErrors)

	require.NotNil(t, doc.Totals)
	assert.Equal(t, "01/2026", doc.Totals.Period)
	assert.Equal(t, 100000.0, doc.Totals.GrossRevenue)
	require.NotNil(t, doc.Totals.ExportRevenue)
	assert.Equal(t, 5000.0, *doc.Totals.ExportRevenue)
	assert.Equal(t, 2760.0, doc.Totals.Repartition[models.TaxPIS])
	assert.Equal(t, 12740.0, doc.Totals.Repartition[models.TaxCOFINS])
}

func TestParseLedgerCreditItems(t *testing.T) {
	doc, err := NewParser().Parse(strings.NewReader(sampleLedger))
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)

	pisItem := doc.Items[0]
	// credit-type code 101 maps to the basic with-credit situation code
	assert.Equal(t, "50", pisItem.CSTPIS)
	assert.Equal(t, 10000.0, pisItem.Revenue)
	require.NotNil(t, pisItem.ClaimedCredit)
	assert.Equal(t, 165.0, *pisItem.ClaimedCredit)
	assert.Equal(t, 165.0, pisItem.PISCharged)

	cofinsItem := doc.Items[1]
	assert.Equal(t, "50", cofinsItem.CSTCOFINS)
	require.NotNil(t, cofinsItem.ClaimedCredit)
	assert.Equal(t, 760.0, *cofinsItem.ClaimedCredit)
}

func TestParseLedgerMissingHeader(t *testing.T) {
	input := "|0110|2|1|1||\n|0111|0,00|0,00|0,00|0,00|1000,00|\n"
	_, err := NewParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}

func TestParseLedgerMissingCNPJ(t *testing.T) {
	input := "|0000|006|0|||01012026|31012026|EMPRESA||SP|\n"
	_, err := NewParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}

func TestParseLedgerInvertedPeriod(t *testing.T) {
	input := "|0000|006|0|||31012026|01012026|EMPRESA|12345678000199|SP|\n"
	_, err := NewParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}

func TestParseLedgerBadEndDateDefaultsToStart(t *testing.T) {
	input := "|0000|006|0|||01012026|XXXXXXXX|EMPRESA|12345678000199|SP|\n"
	doc, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, doc.Header.PeriodStart, doc.Header.PeriodEnd)
	require.Len(t, doc.FieldErrors, 1)
	assert.Equal(t, "dt_fin", doc.FieldErrors[0].Field)
}

func TestParseLedgerUnreadableMoneyIsSoftError(t *testing.T) {
	input := "|0000|006|0|||01012026|31012026|EMPRESA|12345678000199|SP|\n" +
		"|0111|0,00|0,00|0,00|0,00|notanumber|\n"
	doc, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0.0, doc.Totals.GrossRevenue)
	require.NotEmpty(t, doc.FieldErrors)
	assert.Equal(t, "rec_bru_total", doc.FieldErrors[0].Field)
}
