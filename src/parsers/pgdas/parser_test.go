package pgdas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/recupera/backend/src/models"
)

const sampleExtract = `PGDAS-D - Extrato da Apuracao
CNPJ: 12.345.678/0001-99
Razao Social: FARMACIA MODELO LTDA
Periodo de Apuracao (PA): 01/2026
Receita Bruta do PA (RPA): R$ 100.000,00
RBT12: R$ 1.100.000,00
Aliquota Efetiva (%): 6,54%
Valor Devido no PA: R$ 6.540,00
Anexo: I
Receita com Tributacao Monofasica: R$ 40.000,00
Receita com Substituicao Tributaria: R$ 10.000,00
Reparticao dos tributos
PIS: R$ 180,50
COFINS: R$ 833,20
ICMS: R$ 2.223,60
`

func TestParseExtract(t *testing.T) {
	doc, err := NewParser().Parse(strings.NewReader(sampleExtract))
	require.NoError(t, err)

	assert.Equal(t, models.KindPgdas, doc.Kind)
	assert.Equal(t, "12345678000199", doc.Header.CNPJ)
	assert.Equal(t, "Farmacia Modelo LTDA", doc.Header.LegalName)
	assert.Equal(t, models.RegimeSimples, doc.Header.DeclaredRegime)

	require.NotNil(t, doc.Totals)
	assert.Equal(t, "01/2026", doc.Totals.Period)
	assert.Equal(t, 100000.0, doc.Totals.GrossRevenue)
	require.NotNil(t, doc.Totals.RBT12)
	assert.Equal(t, 1100000.0, *doc.Totals.RBT12)
	require.NotNil(t, doc.Totals.EffectiveRate)
	assert.InDelta(t, 0.0654, *doc.Totals.EffectiveRate, 1e-9)
	require.NotNil(t, doc.Totals.TotalDue)
	assert.Equal(t, 6540.0, *doc.Totals.TotalDue)
	assert.Equal(t, "I", doc.Totals.AnnexCode)

	require.NotNil(t, doc.Totals.MonofasicoRevenue)
	assert.Equal(t, 40000.0, *doc.Totals.MonofasicoRevenue)
	require.NotNil(t, doc.Totals.STRevenue)
	assert.Equal(t, 10000.0, *doc.Totals.STRevenue)

	assert.Equal(t, 180.50, doc.Totals.Repartition[models.TaxPIS])
	assert.Equal(t, 833.20, doc.Totals.Repartition[models.TaxCOFINS])
	assert.Equal(t, 2223.60, doc.Totals.Repartition[models.TaxICMS])
}

func TestParseExtractAlternativeLabels(t *testing.T) {
	input := `CNPJ 12345678000199
Nome Empresarial: COMERCIO DE BEBIDAS EPP
PA: 03/2026
Receita Bruta Mensal: 55.000,00
Total do Debito Exigivel: 3.100,00
`
	doc, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "12345678000199", doc.Header.CNPJ)
	assert.Equal(t, "Comercio de Bebidas EPP", doc.Header.LegalName)
	assert.Equal(t, "03/2026", doc.Totals.Period)
	assert.Equal(t, 55000.0, doc.Totals.GrossRevenue)
	require.NotNil(t, doc.Totals.TotalDue)
	assert.Equal(t, 3100.0, *doc.Totals.TotalDue)
}

func TestParseExtractMissingEffectiveRate(t *testing.T) {
	input := strings.ReplaceAll(sampleExtract, "Aliquota Efetiva (%): 6,54%\n", "")
	doc, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Nil(t, doc.Totals.EffectiveRate)
	found := false
	for _, fe := range doc.FieldErrors {
		if fe.Field == "aliquotaEfetiva" {
			found = true
		}
	}
	assert.True(t, found, "expected a field error for the missing effective rate label")
}

func TestParseExtractNothingRecognized(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader("relatorio qualquer sem estrutura alguma"))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedDocument)
}
