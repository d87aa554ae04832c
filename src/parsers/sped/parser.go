// Package sped parses the fixed pipe-delimited fiscal ledger layout
// (EFD-Contribuições style). The file is an ordered stream of typed
// records, one per line, identified by the leading record-code field.
//
// Records consumed:
//
//	0000  opening header (period, legal name, CNPJ)
//	0110  regime and credit-apportionment declaration
//	0111  gross revenue breakdown for the period
//	M100  PIS credit item
//	M200  PIS period consolidation
//	M500  COFINS credit item
//	M600  COFINS period consolidation
//
// Unknown record codes are skipped, keeping the parser forward-compatible
// with yearly layout revisions.
package sped

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/taxonomy"
	"github.com/username/recupera/backend/src/utils"
)

type SpedParser struct{}

func NewParser() *SpedParser {
	return &SpedParser{}
}

func (p *SpedParser) Parse(file io.Reader) (*models.ParsedDocument, error) {
	doc := &models.ParsedDocument{Kind: models.KindSped}
	totals := &models.PeriodTotals{Repartition: make(map[models.TaxType]float64)}

	sawHeader := false
	lineNo := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		// |REG|...| splits into a leading and trailing empty field
		if len(fields) < 3 {
			doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
				Line: lineNo, Field: "registro", Reason: "linha sem delimitadores de registro",
			})
			continue
		}
		fields = fields[1:]

		switch fields[0] {
		case "0000":
			if err := p.parseHeader(fields, doc); err != nil {
				return nil, err
			}
			sawHeader = true
		case "0110":
			p.parseRegime(fields, doc)
		case "0111":
			p.parseRevenue(fields, lineNo, doc, totals)
		case "M100":
			p.parseCreditItem(fields, lineNo, models.TaxPIS, doc)
		case "M500":
			p.parseCreditItem(fields, lineNo, models.TaxCOFINS, doc)
		case "M200":
			p.parseConsolidation(fields, lineNo, models.TaxPIS, doc, totals)
		case "M600":
			p.parseConsolidation(fields, lineNo, models.TaxCOFINS, doc, totals)
		default:
			// forward-compatible: unrecognized record codes are ignored
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger stream: %w", err)
	}

	if !sawHeader {
		return nil, fmt.Errorf("%w: registro 0000 não encontrado", models.ErrMalformedDocument)
	}

	if !doc.Header.PeriodStart.IsZero() {
		totals.Period = utils.FormatPeriod(doc.Header.PeriodStart)
	}
	doc.Totals = totals
	return doc, nil
}

// parseHeader handles record 0000:
// |0000|COD_VER|TIPO_ESCRIT|IND_SIT_ESP|NUM_REC_ANT|DT_INI|DT_FIN|NOME|CNPJ|UF|...
func (p *SpedParser) parseHeader(fields []string, doc *models.ParsedDocument) error {
	if len(fields) < 9 {
		return fmt.Errorf("%w: registro 0000 com %d campos", models.ErrMalformedDocument, len(fields))
	}
	cnpj := taxonomy.NormalizeCode(fields[8])
	if cnpj == "" {
		return fmt.Errorf("%w: CNPJ ausente no registro 0000", models.ErrMalformedDocument)
	}
	start, errStart := utils.ParseLedgerDate(fields[5])
	if errStart != nil {
		return fmt.Errorf("%w: data inicial inválida no registro 0000", models.ErrMalformedDocument)
	}
	end, errEnd := utils.ParseLedgerDate(fields[6])
	if errEnd != nil {
		doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
			Field: "dt_fin", Reason: "data final ilegível, assumido fim igual ao início",
		})
		end = start
	}
	if end.Before(start) {
		return fmt.Errorf("%w: período invertido no registro 0000", models.ErrMalformedDocument)
	}

	doc.Header.CNPJ = cnpj
	doc.Header.LegalName = utils.FormatLegalName(fields[7])
	doc.Header.PeriodStart = start
	doc.Header.PeriodEnd = end
	return nil
}

// parseRegime handles record 0110:
// |0110|COD_INC_TRIB|IND_APRO_CRED|COD_TIPO_CONT|IND_REG_CUM|
func (p *SpedParser) parseRegime(fields []string, doc *models.ParsedDocument) {
	if len(fields) < 3 {
		doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
			Field: "0110", Reason: "registro de regime incompleto",
		})
		return
	}
	switch fields[1] {
	case "1":
		doc.Header.DeclaredRegime = models.RegimeLucroReal
	case "2":
		doc.Header.DeclaredRegime = models.RegimeLucroPresumido
	case "3":
		doc.Header.DeclaredRegime = models.RegimeLucroReal // regime misto escriturado como não cumulativo
	}
	doc.Header.ApportionMethod = fields[2]
}

// parseRevenue handles record 0111:
// |0111|REC_BRU_NCUM_TRIB_MI|REC_BRU_NCUM_NT_MI|REC_BRU_NCUM_EXP|REC_BRU_CUM|REC_BRU_TOTAL|
func (p *SpedParser) parseRevenue(fields []string, lineNo int, doc *models.ParsedDocument, totals *models.PeriodTotals) {
	if len(fields) < 6 {
		doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
			Line: lineNo, Field: "0111", Reason: "registro de receita incompleto",
		})
		return
	}
	if v, ok := p.money(fields[5], lineNo, "rec_bru_total", doc); ok {
		totals.GrossRevenue = utils.ClampNonNegative(v)
	}
	if v, ok := p.money(fields[3], lineNo, "rec_bru_exp", doc); ok {
		exp := utils.ClampNonNegative(v)
		totals.ExportRevenue = &exp
	}
}

// parseCreditItem handles records M100/M500:
// |M100|COD_CRED|IND_CRED_ORI|VL_BC|ALIQ|QUANT_BC|ALIQ_QUANT|VL_CRED|...
// The credit-type code is enriched into the equivalent situation code so
// the classifier treats ledger credit items like invoice lines.
func (p *SpedParser) parseCreditItem(fields []string, lineNo int, tax models.TaxType, doc *models.ParsedDocument) {
	if len(fields) < 8 {
		doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
			Line: lineNo, Field: fields[0], Reason: "registro de crédito incompleto",
		})
		return
	}

	item := models.LineItem{
		Line:        lineNo,
		Description: fmt.Sprintf("Crédito %s código %s", tax, fields[1]),
	}
	if cst, ok := taxonomy.CreditCodeToCST[fields[1]]; ok {
		switch tax {
		case models.TaxPIS:
			item.CSTPIS = cst
		case models.TaxCOFINS:
			item.CSTCOFINS = cst
		}
	}
	if v, ok := p.money(fields[3], lineNo, "vl_bc", doc); ok {
		item.Revenue = utils.ClampNonNegative(v)
	}
	if v, ok := p.money(fields[7], lineNo, "vl_cred", doc); ok {
		cred := utils.ClampNonNegative(v)
		item.ClaimedCredit = &cred
		switch tax {
		case models.TaxPIS:
			item.PISCharged = cred
		case models.TaxCOFINS:
			item.COFINSCharged = cred
		}
	}
	doc.Items = append(doc.Items, item)
}

// parseConsolidation handles records M200/M600, capturing the declared
// total contribution for the period separately from the itemized credits.
// |M200|VL_TOT_CONT_NC_PER|...
func (p *SpedParser) parseConsolidation(fields []string, lineNo int, tax models.TaxType, doc *models.ParsedDocument, totals *models.PeriodTotals) {
	if len(fields) < 2 {
		doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
			Line: lineNo, Field: fields[0], Reason: "registro de consolidação incompleto",
		})
		return
	}
	if v, ok := p.money(fields[1], lineNo, "vl_tot_cont", doc); ok {
		totals.Repartition[tax] = utils.ClampNonNegative(v)
	}
}

// money parses a comma-decimal ledger value, recording a soft FieldError
// on failure.
func (p *SpedParser) money(raw string, lineNo int, field string, doc *models.ParsedDocument) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, false
	}
	v, err := utils.ParseCommaDecimal(raw)
	if err != nil {
		doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
			Line: lineNo, Field: field, Reason: "valor monetário ilegível",
		})
		return 0, false
	}
	return v, true
}
