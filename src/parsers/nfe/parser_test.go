package nfe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/recupera/backend/src/models"
)

const sampleBatch = `{
  "cnpj": "12.345.678/0001-99",
  "razaoSocial": "FARMACIA MODELO LTDA",
  "periodo": "01/2026",
  "itens": [
    {
      "ncm": "3004.90.69",
      "cfop": "5102",
      "cstPis": "4",
      "cstCofins": "04",
      "cstIcms": "00",
      "descricao": "Medicamento generico",
      "valorProduto": 1500.00,
      "valorPis": 0,
      "valorCofins": 0,
      "valorIcms": 270.00
    },
    {
      "ncm": "22021000",
      "cfop": "5405",
      "cstIcms": "60",
      "descricao": "Refrigerante lata",
      "valorProduto": "2.500,00",
      "valorPis": "41,25",
      "valorCofins": "190.00",
      "valorIcms": 0
    }
  ]
}`

func TestParseBatch(t *testing.T) {
	doc, err := NewParser().Parse(strings.NewReader(sampleBatch))
	require.NoError(t, err)

	assert.Equal(t, models.KindNfe, doc.Kind)
	assert.Equal(t, "12345678000199", doc.Header.CNPJ)
	assert.Equal(t, "Farmacia Modelo LTDA", doc.Header.LegalName)
	assert.Equal(t, "01/2026", doc.Totals.Period)
	assert.Equal(t, 4000.0, doc.Totals.GrossRevenue)
	require.Len(t, doc.Items, 2)

	first := doc.Items[0]
	assert.Equal(t, "30049069", first.NCM)
	assert.Equal(t, "5102", first.CFOP)
	// situation codes are normalized to two digits
	assert.Equal(t, "04", first.CSTPIS)
	assert.Equal(t, "04", first.CSTCOFINS)
	assert.Equal(t, "00", first.CSTICMS)
	assert.Equal(t, 1500.0, first.Revenue)
	assert.Equal(t, 270.0, first.ICMSCharged)

	second := doc.Items[1]
	// string amounts in either decimal convention are accepted
	assert.Equal(t, 2500.0, second.Revenue)
	assert.Equal(t, 41.25, second.PISCharged)
	assert.Equal(t, 190.0, second.COFINSCharged)
	assert.Equal(t, "60", second.CSTICMS)
}

func TestParseBatchDescriptionEnrichment(t *testing.T) {
	input := `{
	  "cnpj": "12345678000199",
	  "periodo": "01/2026",
	  "itens": [
	    {"ncm": "3004.90.69", "valorProduto": 100},
	    {"cstPis": "06", "valorProduto": 100},
	    {"valorProduto": 100}
	  ]
	}`
	doc, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Items, 3)

	// missing descriptions are filled from the classification-code tables
	assert.Equal(t, "Medicamentos", doc.Items[0].Description)
	assert.Equal(t, "Operação tributável a alíquota zero", doc.Items[1].Description)
	assert.Equal(t, "", doc.Items[2].Description)
}

func TestParseBatchSanitizesDescriptions(t *testing.T) {
	input := `{
	  "cnpj": "12345678000199",
	  "periodo": "01/2026",
	  "itens": [
	    {"descricao": "=SOMA(A1:A2)", "valorProduto": 100},
	    {"descricao": "Dipirona\u0000 500mg", "valorProduto": 100}
	  ]
	}`
	doc, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)

	// formula characters are neutralized, control characters removed
	assert.Equal(t, "'=SOMA(A1:A2)", doc.Items[0].Description)
	assert.Equal(t, "Dipirona 500mg", doc.Items[1].Description)
}

func TestParseBatchMissingCNPJ(t *testing.T) {
	input := `{"razaoSocial": "EMPRESA", "periodo": "01/2026", "itens": []}`
	_, err := NewParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}

func TestParseBatchInvalidPeriod(t *testing.T) {
	input := `{"cnpj": "12345678000199", "periodo": "2026-01", "itens": []}`
	_, err := NewParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}

func TestParseBatchNotJSON(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader("|0000|isto|nao|e|json|"))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}

func TestParseBatchUnreadableAmountIsSoftError(t *testing.T) {
	input := `{
	  "cnpj": "12345678000199",
	  "periodo": "02/2026",
	  "itens": [
	    {"descricao": "Item", "valorProduto": "abc", "valorIcms": -50}
	  ]
	}`
	doc, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, 0.0, doc.Items[0].Revenue)
	// negative amounts clamp to zero
	assert.Equal(t, 0.0, doc.Items[0].ICMSCharged)
	require.Len(t, doc.FieldErrors, 1)
	assert.Equal(t, "valorProduto", doc.FieldErrors[0].Field)
}
