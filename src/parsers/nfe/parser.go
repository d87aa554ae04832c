// Package nfe parses an already-itemized invoice batch: a JSON envelope
// with line items carrying explicit classification codes. There is no
// text recovery to do here; the work is normalization (code cleanup,
// numeric coercion), since batches come from heterogeneous invoice
// exporters that disagree on number formatting.
package nfe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/security/validation"
	"github.com/username/recupera/backend/src/taxonomy"
	"github.com/username/recupera/backend/src/utils"
)

type NfeParser struct{}

func NewParser() *NfeParser {
	return &NfeParser{}
}

// flexFloat accepts a JSON number or a string in either decimal
// convention ("1.234,56" / "1,234.56").
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := utils.ParseMoneyAuto(str)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type batchEnvelope struct {
	CNPJ      string      `json:"cnpj"`
	LegalName string      `json:"razaoSocial"`
	Period    string      `json:"periodo"` // MM/YYYY
	Items     []batchItem `json:"itens"`
}

type batchItem struct {
	NCM         string          `json:"ncm"`
	CFOP        string          `json:"cfop"`
	CSTPIS      string          `json:"cstPis"`
	CSTCOFINS   string          `json:"cstCofins"`
	CSTICMS     string          `json:"cstIcms"`
	Description string          `json:"descricao"`
	Revenue     json.RawMessage `json:"valorProduto"`
	PIS         json.RawMessage `json:"valorPis"`
	COFINS      json.RawMessage `json:"valorCofins"`
	ICMS        json.RawMessage `json:"valorIcms"`
}

func (p *NfeParser) Parse(file io.Reader) (*models.ParsedDocument, error) {
	var envelope batchEnvelope
	if err := json.NewDecoder(file).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: lote de notas ilegível: %v", models.ErrMalformedDocument, err)
	}

	cnpj := taxonomy.NormalizeCode(envelope.CNPJ)
	if cnpj == "" {
		return nil, fmt.Errorf("%w: CNPJ ausente no lote", models.ErrMalformedDocument)
	}
	start, err := utils.ParsePeriod(envelope.Period)
	if err != nil {
		return nil, fmt.Errorf("%w: período ausente ou inválido no lote", models.ErrMalformedDocument)
	}

	doc := &models.ParsedDocument{
		Kind: models.KindNfe,
		Header: models.DocumentHeader{
			CNPJ:        cnpj,
			LegalName:   utils.FormatLegalName(envelope.LegalName),
			PeriodStart: start,
			PeriodEnd:   start.AddDate(0, 1, -1),
		},
	}
	totals := &models.PeriodTotals{
		Period:      envelope.Period,
		Repartition: make(map[models.TaxType]float64),
	}

	for i, rawItem := range envelope.Items {
		item := models.LineItem{
			Line:        i + 1,
			NCM:         taxonomy.NormalizeCode(rawItem.NCM),
			CFOP:        taxonomy.NormalizeCode(rawItem.CFOP),
			Description: sanitizeDescription(rawItem.Description),
		}
		if rawItem.CSTPIS != "" {
			item.CSTPIS = taxonomy.NormalizeCST(rawItem.CSTPIS)
		}
		if rawItem.CSTCOFINS != "" {
			item.CSTCOFINS = taxonomy.NormalizeCST(rawItem.CSTCOFINS)
		}
		if rawItem.CSTICMS != "" {
			item.CSTICMS = taxonomy.NormalizeCST(rawItem.CSTICMS)
		}
		if item.Description == "" {
			item.Description = describeItem(item)
		}

		item.Revenue = p.amount(rawItem.Revenue, i+1, "valorProduto", doc)
		item.PISCharged = p.amount(rawItem.PIS, i+1, "valorPis", doc)
		item.COFINSCharged = p.amount(rawItem.COFINS, i+1, "valorCofins", doc)
		item.ICMSCharged = p.amount(rawItem.ICMS, i+1, "valorIcms", doc)

		totals.GrossRevenue += item.Revenue
		doc.Items = append(doc.Items, item)
	}

	totals.GrossRevenue = utils.Round2(totals.GrossRevenue)
	doc.Totals = totals
	return doc, nil
}

// sanitizeDescription cleans a free-text description coming from an
// invoice exporter. Summaries end up in spreadsheets, so formula
// characters are neutralized here.
func sanitizeDescription(s string) string {
	return validation.SanitizeForFormulaInjection(validation.StripUnprintable(strings.TrimSpace(s)))
}

// describeItem fills a missing description from the classification-code
// tables: the monofásico product-group name when the NCM identifies one,
// otherwise the situation-code display name.
func describeItem(item models.LineItem) string {
	if group, ok := taxonomy.MonofasicoGroup(item.NCM); ok {
		return group.Name
	}
	if name, ok := taxonomy.CSTPISDescriptions[item.CSTPIS]; ok {
		return name
	}
	return ""
}

// amount coerces one monetary field, recording a soft FieldError and
// returning zero when the value is unreadable. A bad number never rejects
// the batch.
func (p *NfeParser) amount(raw json.RawMessage, line int, field string, doc *models.ParsedDocument) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v flexFloat
	if err := json.Unmarshal(raw, &v); err != nil {
		doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
			Line: line, Field: field, Reason: "valor numérico ilegível",
		})
		return 0
	}
	return utils.ClampNonNegative(float64(v))
}
