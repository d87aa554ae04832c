// Package pgdas parses the loosely structured label:value declaration
// extract issued for blended-rate (Simples Nacional) taxpayers. The
// layout is not column-aligned and label spellings drift between report
// versions, so every field is matched by an ordered list of candidate
// patterns evaluated until the first hit. Every field is optional: the
// parser returns best-effort partial data and records what it could not
// find, instead of failing.
package pgdas

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/taxonomy"
	"github.com/username/recupera/backend/src/utils"
)

type PgdasParser struct{}

func NewParser() *PgdasParser {
	return &PgdasParser{}
}

// fieldPatterns holds the accepted label spellings per field, most
// specific first. Each pattern captures the value in group 1.
var fieldPatterns = map[string][]*regexp.Regexp{
	"cnpj": {
		regexp.MustCompile(`(?i)CNPJ\s*(?:b[áa]sico|matriz)?\s*[:\-]\s*([\d./\-]{11,18})`),
		regexp.MustCompile(`(?i)CNPJ\s+([\d./\-]{11,18})`),
	},
	"razaoSocial": {
		regexp.MustCompile(`(?i)Raz[ãa]o\s+Social\s*[:\-]\s*(.+)`),
		regexp.MustCompile(`(?i)Nome\s+Empresarial\s*[:\-]\s*(.+)`),
	},
	"periodo": {
		regexp.MustCompile(`(?i)Per[íi]odo\s+de\s+Apura[çc][ãa]o\s*(?:\(PA\))?\s*[:\-]\s*(\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)\bPA\s*[:\-]\s*(\d{2}/\d{4})`),
	},
	"receitaBrutaPA": {
		regexp.MustCompile(`(?i)Receita\s+Bruta\s+do\s+PA\s*(?:\(RPA\))?\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Receita\s+Bruta\s+Mensal\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Receita\s+Bruta\s+Informada\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
	"rbt12": {
		regexp.MustCompile(`(?i)RBT12\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Receita\s+Bruta\s+Acumulada\s*(?:nos\s+12\s+meses(?:\s+anteriores)?)?\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
	"valorDevido": {
		regexp.MustCompile(`(?i)Valor\s+Devido\s*(?:no\s+PA)?\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Total\s+do\s+D[ée]bito\s+Exig[íi]vel\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Total\s+Geral\s+da\s+Empresa\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
	"aliquotaEfetiva": {
		regexp.MustCompile(`(?i)Al[íi]quota\s+Efetiva\s*(?:\(%\))?\s*[:\-]?\s*([\d.,]+)\s*%?`),
		regexp.MustCompile(`(?i)Al[íi]quota\s+Apurada\s*[:\-]?\s*([\d.,]+)\s*%?`),
	},
	"anexo": {
		regexp.MustCompile(`(?i)Anexo\s*[:\-]?\s*(I{1,3}|IV|V)\b`),
		regexp.MustCompile(`(?i)Tabela\s+do\s+Anexo\s*[:\-]?\s*(I{1,3}|IV|V)\b`),
	},
	"receitaMonofasica": {
		regexp.MustCompile(`(?i)Receita\s+(?:com\s+)?(?:Tributa[çc][ãa]o\s+)?Monof[áa]sica\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Revenda\s+de\s+Mercadorias\s+.*monof[áa]sic[ao]\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
	"receitaST": {
		regexp.MustCompile(`(?i)Receita\s+(?:com\s+)?Substitui[çc][ãa]o\s+Tribut[áa]ria\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Revenda\s+de\s+Mercadorias\s+.*\bST\b\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
	"receitaExportacao": {
		regexp.MustCompile(`(?i)Receita\s+de\s+Exporta[çc][ãa]o\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Exporta[çc][ãa]o\s+de\s+Mercadorias\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
	"receitaIsenta": {
		regexp.MustCompile(`(?i)Receita\s+Isenta\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Receitas?\s+com\s+Isen[çc][ãa]o\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
}

// repartition labels for the per-tribute amounts inside the blended rate
var repartitionPatterns = map[models.TaxType][]*regexp.Regexp{
	models.TaxPIS: {
		regexp.MustCompile(`(?i)\bPIS(?:/Pasep)?\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
	models.TaxCOFINS: {
		regexp.MustCompile(`(?i)\bCOFINS\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
	models.TaxICMS: {
		regexp.MustCompile(`(?i)\bICMS\s*[:\-]?\s*(?:R\$)?\s*([\d.,]+)`),
	},
}

func (p *PgdasParser) Parse(file io.Reader) (*models.ParsedDocument, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	text := string(raw)

	doc := &models.ParsedDocument{Kind: models.KindPgdas}
	totals := &models.PeriodTotals{Repartition: make(map[models.TaxType]float64)}
	matched := 0

	if v, ok := p.match(text, "cnpj"); ok {
		doc.Header.CNPJ = taxonomy.NormalizeCode(v)
		matched++
	} else {
		p.missing(doc, "cnpj")
	}
	if v, ok := p.match(text, "razaoSocial"); ok {
		doc.Header.LegalName = utils.FormatLegalName(v)
		matched++
	} else {
		p.missing(doc, "razaoSocial")
	}
	if v, ok := p.match(text, "periodo"); ok {
		matched++
		totals.Period = v
		if start, err := utils.ParsePeriod(v); err == nil {
			doc.Header.PeriodStart = start
			doc.Header.PeriodEnd = start.AddDate(0, 1, -1)
		}
	} else {
		p.missing(doc, "periodo")
	}
	// a declaration extract always belongs to a blended-rate taxpayer
	doc.Header.DeclaredRegime = models.RegimeSimples

	if v, ok := p.money(text, "receitaBrutaPA", doc); ok {
		totals.GrossRevenue = utils.ClampNonNegative(v)
		matched++
	}
	if v, ok := p.money(text, "rbt12", doc); ok {
		rbt12 := utils.ClampNonNegative(v)
		totals.RBT12 = &rbt12
		matched++
	}
	if v, ok := p.money(text, "valorDevido", doc); ok {
		due := utils.ClampNonNegative(v)
		totals.TotalDue = &due
		matched++
	}
	if v, ok := p.match(text, "aliquotaEfetiva"); ok {
		if rate, err := utils.ParsePercent(v); err == nil {
			totals.EffectiveRate = &rate
			matched++
		} else {
			doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
				Field: "aliquotaEfetiva", Reason: "percentual ilegível",
			})
		}
	} else {
		p.missing(doc, "aliquotaEfetiva")
	}
	if v, ok := p.match(text, "anexo"); ok {
		totals.AnnexCode = strings.ToUpper(v)
		matched++
	}

	if v, ok := p.money(text, "receitaMonofasica", doc); ok {
		mono := utils.ClampNonNegative(v)
		totals.MonofasicoRevenue = &mono
		matched++
	}
	if v, ok := p.money(text, "receitaST", doc); ok {
		st := utils.ClampNonNegative(v)
		totals.STRevenue = &st
		matched++
	}
	if v, ok := p.money(text, "receitaExportacao", doc); ok {
		exp := utils.ClampNonNegative(v)
		totals.ExportRevenue = &exp
		matched++
	}
	if v, ok := p.money(text, "receitaIsenta", doc); ok {
		isenta := utils.ClampNonNegative(v)
		totals.ExemptRevenue = &isenta
		matched++
	}

	for tax, patterns := range repartitionPatterns {
		for _, re := range patterns {
			if m := re.FindStringSubmatch(text); m != nil {
				if v, err := utils.ParseMoneyAuto(m[1]); err == nil {
					totals.Repartition[tax] = utils.ClampNonNegative(v)
					matched++
				}
				break
			}
		}
	}

	// nothing recognized at all: this is not a declaration extract
	if matched == 0 {
		return nil, fmt.Errorf("%w: nenhum rótulo reconhecido no extrato", models.ErrMalformedDocument)
	}

	doc.Totals = totals
	return doc, nil
}

// match tries the candidate patterns for a field in order and returns the
// first captured value.
func (p *PgdasParser) match(text, field string) (string, bool) {
	for _, re := range fieldPatterns[field] {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// money matches a field and parses it with the locale-auto-detecting
// parser, recording a soft FieldError when the label matched but the
// value is unreadable.
func (p *PgdasParser) money(text, field string, doc *models.ParsedDocument) (float64, bool) {
	v, ok := p.match(text, field)
	if !ok {
		p.missing(doc, field)
		return 0, false
	}
	val, err := utils.ParseMoneyAuto(v)
	if err != nil {
		doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
			Field: field, Reason: "valor monetário ilegível",
		})
		return 0, false
	}
	return val, true
}

func (p *PgdasParser) missing(doc *models.ParsedDocument, field string) {
	doc.FieldErrors = append(doc.FieldErrors, models.FieldError{
		Field: field, Reason: "rótulo não encontrado no extrato",
	})
}
