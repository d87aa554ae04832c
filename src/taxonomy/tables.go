// Package taxonomy holds the classification-code lookup tables and the
// versioned rule catalogs the classifier and the credit engine consume.
// Regulatory catalogs change yearly, so everything here is data that can
// be swapped without a redeployment.
package taxonomy

import (
	"strings"

	"github.com/username/recupera/backend/src/models"
)

// ProductGroup describes one family of single-phase (monofásico) products
// identified by NCM prefix.
type ProductGroup struct {
	Name       string
	LegalBasis string
}

// MonofasicoNCMPrefixes maps NCM code prefixes to the product groups whose
// PIS/COFINS is collected once at the start of the supply chain. Longest
// prefix wins.
var MonofasicoNCMPrefixes = map[string]ProductGroup{
	// Combustíveis
	"2710": {Name: "Combustíveis e lubrificantes", LegalBasis: "Lei 9.718/1998, art. 4º"},
	"2711": {Name: "Gás liquefeito de petróleo", LegalBasis: "Lei 9.718/1998, art. 4º"},
	// Medicamentos e produtos de perfumaria
	"3001": {Name: "Produtos farmacêuticos", LegalBasis: "Lei 10.147/2000, art. 1º, I, a"},
	"3003": {Name: "Medicamentos", LegalBasis: "Lei 10.147/2000, art. 1º, I, a"},
	"3004": {Name: "Medicamentos", LegalBasis: "Lei 10.147/2000, art. 1º, I, a"},
	"3303": {Name: "Perfumes e águas-de-colônia", LegalBasis: "Lei 10.147/2000, art. 1º, I, b"},
	"3304": {Name: "Produtos de beleza e maquiagem", LegalBasis: "Lei 10.147/2000, art. 1º, I, b"},
	"3305": {Name: "Preparações capilares", LegalBasis: "Lei 10.147/2000, art. 1º, I, b"},
	"3307": {Name: "Preparações de higiene pessoal", LegalBasis: "Lei 10.147/2000, art. 1º, I, b"},
	"3401": {Name: "Sabões e produtos de limpeza", LegalBasis: "Lei 10.147/2000, art. 1º, I, b"},
	// Autopeças
	"4011": {Name: "Pneus novos", LegalBasis: "Lei 10.485/2002, art. 5º"},
	"4013": {Name: "Câmaras de ar", LegalBasis: "Lei 10.485/2002, art. 5º"},
	"8708": {Name: "Autopeças", LegalBasis: "Lei 10.485/2002, art. 3º"},
	// Bebidas frias
	"2201": {Name: "Águas", LegalBasis: "Lei 13.097/2015, art. 14"},
	"2202": {Name: "Refrigerantes e isotônicos", LegalBasis: "Lei 13.097/2015, art. 14"},
	"2203": {Name: "Cervejas", LegalBasis: "Lei 13.097/2015, art. 14"},
}

// CST PIS/COFINS situation codes relevant to credit recovery. The CST is
// the authoritative indicator on the source document; NCM is a secondary
// corroborating signal.
var (
	CSTMonofasico   = map[string]bool{"04": true}
	CSTSubstituicao = map[string]bool{"05": true}
	CSTAliquotaZero = map[string]bool{"06": true}
	// 50-56: operations with credit entitlement (non-cumulative regime)
	CSTComCredito = map[string]bool{
		"50": true, "51": true, "52": true, "53": true,
		"54": true, "55": true, "56": true,
	}
)

// CSTICMSSubstituicao lists ICMS situation codes indicating the tax was
// already withheld by substitution earlier in the chain.
var CSTICMSSubstituicao = map[string]bool{
	"10": true, "30": true, "60": true, "70": true,
}

// CFOPSubstituicao lists operation codes for goods acquired or sold under
// the ICMS substitution regime.
var CFOPSubstituicao = map[string]bool{
	"5401": true, "5402": true, "5403": true, "5405": true,
	"6401": true, "6403": true, "6404": true,
}

// CSTPISDescriptions gives display names for the most common PIS/COFINS
// situation codes.
var CSTPISDescriptions = map[string]string{
	"01": "Operação tributável com alíquota básica",
	"02": "Operação tributável com alíquota diferenciada",
	"04": "Operação tributável monofásica - revenda a alíquota zero",
	"05": "Operação tributável por substituição tributária",
	"06": "Operação tributável a alíquota zero",
	"07": "Operação isenta da contribuição",
	"08": "Operação sem incidência da contribuição",
	"09": "Operação com suspensão da contribuição",
	"49": "Outras operações de saída",
}

// CreditCodeToCST maps ledger credit-type codes (record M100/M500 field
// COD_CRED) to the equivalent PIS/COFINS situation code, so ledger credit
// items can be classified by the same CST rules as invoice lines.
var CreditCodeToCST = map[string]string{
	"101": "50", // aquisição de bens para revenda, receita tributada
	"102": "51", // aquisição de bens utilizados como insumo
	"103": "52", // aquisição de serviços utilizados como insumo
	"104": "53", // energia elétrica e térmica
	"105": "54", // aluguéis de prédios, máquinas e equipamentos
	"106": "55", // armazenagem e frete na operação de venda
	"108": "56", // depreciação e amortização
	"201": "50", // receita não tributada no mercado interno
	"301": "50", // receita de exportação
}

// NormalizeCode strips punctuation and whitespace from a fiscal
// classification code ("30.04" -> "3004").
func NormalizeCode(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCST normalizes a CST code to its two-digit form.
func NormalizeCST(code string) string {
	c := NormalizeCode(code)
	if len(c) == 1 {
		return "0" + c
	}
	return c
}

// knownCodes returns the authoritative code table covering a rule's
// match kind, tax type and treatment. Catalog validation rejects rule
// values absent from these tables, so the catalog and the code tables
// cannot drift apart. Nil means no table governs the combination.
func knownCodes(tax models.TaxType, match MatchKind, treatment models.Treatment) map[string]bool {
	switch match {
	case MatchCST:
		if tax == models.TaxICMS {
			if treatment == models.TreatmentSubstituicao {
				return CSTICMSSubstituicao
			}
			return nil
		}
		switch treatment {
		case models.TreatmentMonofasico:
			return CSTMonofasico
		case models.TreatmentSubstituicao:
			return CSTSubstituicao
		case models.TreatmentAliquotaZero:
			return CSTAliquotaZero
		case models.TreatmentCreditoInsumo:
			return CSTComCredito
		}
	case MatchCFOP:
		if treatment == models.TreatmentSubstituicao {
			return CFOPSubstituicao
		}
	}
	return nil
}

// MonofasicoGroup returns the product group for an NCM code when one of
// the monofásico prefixes matches. Longest prefix wins.
func MonofasicoGroup(ncm string) (ProductGroup, bool) {
	n := NormalizeCode(ncm)
	best := ""
	for prefix := range MonofasicoNCMPrefixes {
		if strings.HasPrefix(n, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return ProductGroup{}, false
	}
	return MonofasicoNCMPrefixes[best], true
}
