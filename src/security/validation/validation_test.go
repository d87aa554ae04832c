package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/recupera/backend/src/logger"
)

func TestValidateClientContentType(t *testing.T) {
	logger.InitLogger("error")

	assert.NoError(t, ValidateClientContentType("text/plain"))
	assert.NoError(t, ValidateClientContentType("application/json"))
	assert.NoError(t, ValidateClientContentType("application/json; charset=utf-8"))
	assert.Error(t, ValidateClientContentType("application/pdf"))
	assert.Error(t, ValidateClientContentType("image/png"))
	assert.Error(t, ValidateClientContentType(""))
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	logger.InitLogger("error")

	ledger := bytes.NewReader([]byte("|0000|006|0|||01012026|31012026|EMPRESA|12345678000199|SP|\n"))
	detected, err := ValidateFileContentByMagicBytes(ledger)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", detected)

	// reader position is reset for the parser
	pos, _ := ledger.Seek(0, 1)
	assert.Equal(t, int64(0), pos)

	png := bytes.NewReader([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0})
	_, err = ValidateFileContentByMagicBytes(png)
	require.Error(t, err)
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", SanitizeForFormulaInjection("=SUM(A1)"))
	assert.Equal(t, "'+5000", SanitizeForFormulaInjection("+5000"))
	assert.Equal(t, "Medicamento", SanitizeForFormulaInjection("Medicamento"))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "abc\tdef", StripUnprintable("abc\t\x00def"))
}

func TestSanitizeCompanyID(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-99", SanitizeCompanyID(" 12.345.678/0001-99 "))
	assert.Equal(t, "12345678000199", SanitizeCompanyID("12345678\t000199;*"))
}
