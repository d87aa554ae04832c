package models

import "time"

// DocumentKind identifies the government file layout of an upload and
// selects the parser responsible for it.
type DocumentKind string

const (
	KindSped  DocumentKind = "sped"  // fixed pipe-delimited fiscal ledger
	KindPgdas DocumentKind = "pgdas" // label:value declaration extract
	KindNfe   DocumentKind = "nfe"   // itemized invoice batch
)

// TaxType identifies one of the tax types the engine computes credits for.
type TaxType string

const (
	TaxPIS    TaxType = "PIS"
	TaxCOFINS TaxType = "COFINS"
	TaxICMS   TaxType = "ICMS"
)

// TaxRegime is the company's declared taxation regime.
type TaxRegime string

const (
	RegimeSimples        TaxRegime = "simples"
	RegimeLucroPresumido TaxRegime = "lucro-presumido"
	RegimeLucroReal      TaxRegime = "lucro-real"
)

// Treatment is the tax-treatment category a rule assigns to a line item.
type Treatment string

const (
	TreatmentMonofasico    Treatment = "monofasico"     // single-phase: tax collected earlier in the chain
	TreatmentSubstituicao  Treatment = "substituicao"   // substitution: another party remits the tax
	TreatmentAliquotaZero  Treatment = "aliquota-zero"  // zero-rated
	TreatmentRetencaoFonte Treatment = "retencao-fonte" // withheld at source
	TreatmentCreditoInsumo Treatment = "credito-insumo" // eligible input credit
)

// Confidence rates how directly a result was derived from authoritative
// document fields versus inference.
type Confidence string

const (
	ConfidenceHigh   Confidence = "alta"
	ConfidenceMedium Confidence = "media"
	ConfidenceLow    Confidence = "baixa"
)

// DocumentHeader carries the company identification and reporting period
// extracted from the opening section of a fiscal document.
type DocumentHeader struct {
	CNPJ            string    `json:"cnpj"`
	LegalName       string    `json:"razaoSocial"`
	PeriodStart     time.Time `json:"periodoInicio"`
	PeriodEnd       time.Time `json:"periodoFim"`
	DeclaredRegime  TaxRegime `json:"regimeDeclarado"`
	ApportionMethod string    `json:"metodoApropriacao"` // ledger only, record 0110
}

// LineItem is one taxable event or product line in its normalized form.
// Monetary fields are non-negative; parsers clamp instead of emitting
// negative values.
type LineItem struct {
	Line          int      `json:"linha"`
	NCM           string   `json:"ncm"`
	CFOP          string   `json:"cfop"`
	CSTPIS        string   `json:"cstPis"`
	CSTCOFINS     string   `json:"cstCofins"`
	CSTICMS       string   `json:"cstIcms"`
	Description   string   `json:"descricao"`
	Revenue       float64  `json:"receita"`
	PISCharged    float64  `json:"valorPis"`
	COFINSCharged float64  `json:"valorCofins"`
	ICMSCharged   float64  `json:"valorIcms"`
	ClaimedCredit *float64 `json:"creditoApropriado,omitempty"`
}

// FieldError is a soft per-field parse failure. The affected field is left
// at its zero value and processing continues.
type FieldError struct {
	Line   int    `json:"linha,omitempty"`
	Field  string `json:"campo"`
	Reason string `json:"motivo"`
}

// PeriodTotals holds the declared company-level totals for one reporting
// period. Pointer fields are nil when the source document did not carry
// the value; the credit engine then falls back to estimation.
type PeriodTotals struct {
	Period            string              `json:"periodo"` // MM/YYYY
	GrossRevenue      float64             `json:"receitaBrutaPA"`
	RBT12             *float64            `json:"rbt12,omitempty"`
	EffectiveRate     *float64            `json:"aliquotaEfetiva,omitempty"` // fraction, e.g. 0.06
	TotalDue          *float64            `json:"valorDevido,omitempty"`
	AnnexCode         string              `json:"anexo,omitempty"`
	Repartition       map[TaxType]float64 `json:"reparticao,omitempty"` // declared amount per tax type
	MonofasicoRevenue *float64            `json:"receitaMonofasica,omitempty"`
	STRevenue         *float64            `json:"receitaST,omitempty"`
	ExportRevenue     *float64            `json:"receitaExportacao,omitempty"`
	ExemptRevenue     *float64            `json:"receitaIsenta,omitempty"`
}

// ParsedDocument is the normalized output of any parser: header, line
// items, declared totals when the layout carries them, and the soft
// errors collected along the way.
type ParsedDocument struct {
	Kind        DocumentKind  `json:"tipo"`
	Header      DocumentHeader `json:"cabecalho"`
	Items       []LineItem    `json:"itens"`
	Totals      *PeriodTotals `json:"totais,omitempty"`
	FieldErrors []FieldError  `json:"errosDeCampo,omitempty"`
}

// ClassificationResult tags one line item with one matched rule. A line
// item may appear in zero, one or several results; rules are evaluated
// independently per tax type.
type ClassificationResult struct {
	Item       LineItem   `json:"item"`
	RuleCode   string     `json:"codigoRegra"`
	TaxType    TaxType    `json:"tributo"`
	Treatment  Treatment  `json:"tratamento"`
	Confidence Confidence `json:"confianca"`
	Score      float64    `json:"pontuacao"`
	Signal     string     `json:"sinal"` // "cst", "cfop", "ncm", "heuristica"
}

// CreditDetail exposes the inputs of the proportional allocation so the
// caller can audit how a recoverable value was reached.
type CreditDetail struct {
	BaseRevenue    float64 `json:"receitaBase"`
	EffectiveRate  float64 `json:"aliquotaEfetiva"`
	RepartitionPct float64 `json:"percentualReparticao"`
	RevenueShare   float64 `json:"proporcaoReceita"`
	EstimatedBasis bool    `json:"baseEstimada"` // declared totals absent, tax paid was estimated
}

// RecoverableCredit is an amount improperly paid and therefore
// recoverable. Never mutated after creation; one per
// (period, rule, tax type) combination.
type RecoverableCredit struct {
	Period           string       `json:"periodo"`
	RuleCode         string       `json:"codigoRegra"`
	TaxType          TaxType      `json:"tributo"`
	OriginalValue    float64      `json:"valorOriginal"`
	RecoverableValue float64      `json:"valorRecuperavel"`
	LegalBasis       string       `json:"baseLegal"`
	Confidence       Confidence   `json:"confianca"`
	Detail           CreditDetail `json:"detalhe"`
}

// SuppressedRule records a matched rule whose credit was withheld because
// the allocation technique is legally unavailable for the rule/regime
// pair. Surfaced in the summary rather than silently dropped.
type SuppressedRule struct {
	RuleCode string    `json:"codigoRegra"`
	TaxType  TaxType   `json:"tributo"`
	Regime   TaxRegime `json:"regime"`
	Reason   string    `json:"motivo"`
}

// CreditSummary aggregates the credits of one analysis run.
type CreditSummary struct {
	TotalRecoverable  float64                `json:"totalRecuperavel"`
	ByConfidence      map[Confidence]float64 `json:"porConfianca"`
	ByTaxType         map[TaxType]float64    `json:"porTributo"`
	CreditsFound      int                    `json:"creditosEncontrados"`
	DocumentsAnalyzed int                    `json:"documentosAnalisados"`
	DocumentsFailed   int                    `json:"documentosRejeitados"`
	Credits           []RecoverableCredit    `json:"creditos"`
	SuppressedRules   []SuppressedRule       `json:"regrasSuprimidas"`
	Disclaimer        string                 `json:"avisoLegal"`
}

// CustomerProfile qualifies who the company sells to. The transitional
// regime justification depends on whether downstream customers can use
// generated tax credits.
type CustomerProfile string

const (
	ProfileB2B   CustomerProfile = "b2b"
	ProfileB2C   CustomerProfile = "b2c"
	ProfileMixed CustomerProfile = "misto"
)

// SimulationInput carries the company financial snapshot for a regime
// comparison. Missing values are treated as zero, never as an error.
type SimulationInput struct {
	AnnualRevenue   float64         `json:"receitaBrutaAnual"`
	RBT12           float64         `json:"rbt12"`
	Payroll         float64         `json:"folhaPagamento"`
	Sector          string          `json:"setor"` // "comercio", "industria", "servicos"
	Costs           float64         `json:"custosDedutiveis"`
	InputPurchases  float64         `json:"comprasInsumos"`
	CustomerProfile CustomerProfile `json:"perfilClientes"`
}

// RegimeCalculation is the computed liability under one regime. Ineligible
// regimes are reported with Eligible=false and a reason, never omitted.
type RegimeCalculation struct {
	Regime           string  `json:"regime"`
	AnnualTax        float64 `json:"impostoAnual"`
	EffectiveRate    float64 `json:"aliquotaEfetiva"`
	CreditsGenerated float64 `json:"creditosGerados"`
	Eligible         bool    `json:"elegivel"`
	Reason           string  `json:"motivo,omitempty"`
}

// ComparisonResult is the full regime comparison for one company
// snapshot. Owned by the caller once returned.
type ComparisonResult struct {
	Calculations  []RegimeCalculation `json:"calculos"`
	Recommended   string              `json:"regimeRecomendado"`
	GapToRunnerUp float64             `json:"diferencaSegundoColocado"`
	Justification string              `json:"justificativa"`
	Disclaimer    string              `json:"avisoLegal"`
}

// Disclaimer accompanies every result the engine produces. All figures
// are advisory estimates pending professional review.
const Disclaimer = "Valores estimados com base nos documentos fornecidos. " +
	"Não constituem aconselhamento jurídico ou contábil; a recuperação efetiva " +
	"depende de revisão por profissional habilitado."
