package simulator

import (
	"github.com/username/recupera/backend/src/models"
)

// Regime identifiers, in the fixed computation order used for ranking
// tie-breaks.
const (
	RegimeSimples          = "simples"
	RegimeLucroPresumido   = "lucro-presumido"
	RegimeLucroReal        = "lucro-real"
	RegimeTransicaoPorFora = "transicao-por-fora"  // new consumption tax grossed up on top of the blended rate
	RegimeTransicaoDentro  = "transicao-por-dentro" // new consumption tax net of the blended consumption share
)

const (
	// SimplesCeiling is the annual gross revenue limit for the
	// blended-rate regime and its transitional variants (LC 123/2006).
	SimplesCeiling = 4_800_000.0

	// FatorRThreshold switches service companies to the discounted annex
	// when payroll reaches this share of revenue.
	FatorRThreshold = 0.28

	// TransitionRate is the combined CBS+IBS test rate of the transition
	// period (LC 214/2025).
	TransitionRate = 0.01

	// ConsumptionShare is the portion of the blended rate attributable
	// to consumption taxes (PIS + COFINS + ICMS repartition).
	ConsumptionShare = 0.0276 + 0.1274 + 0.34

	// IRPJ surcharge applies to the presumed/actual profit base above
	// this annual amount.
	irpjSurchargeFloor = 240_000.0
)

// bracket is one row of a progressive revenue table: nominal rate and
// deduction applied to the accumulated twelve-month revenue.
type bracket struct {
	upTo      float64
	rate      float64
	deduction float64
}

// Progressive annex tables (LC 123/2006, as amended by LC 155/2016).
var (
	annexI = []bracket{ // comércio
		{180_000, 0.040, 0},
		{360_000, 0.073, 5_940},
		{720_000, 0.095, 13_860},
		{1_800_000, 0.107, 22_500},
		{3_600_000, 0.143, 87_300},
		{4_800_000, 0.190, 378_000},
	}
	annexII = []bracket{ // indústria
		{180_000, 0.045, 0},
		{360_000, 0.078, 5_940},
		{720_000, 0.100, 13_860},
		{1_800_000, 0.112, 22_500},
		{3_600_000, 0.147, 85_500},
		{4_800_000, 0.300, 720_000},
	}
	annexIII = []bracket{ // serviços com Fator R favorável
		{180_000, 0.060, 0},
		{360_000, 0.112, 9_360},
		{720_000, 0.135, 17_640},
		{1_800_000, 0.160, 35_640},
		{3_600_000, 0.210, 125_640},
		{4_800_000, 0.330, 648_000},
	}
	annexV = []bracket{ // serviços com Fator R desfavorável
		{180_000, 0.155, 0},
		{360_000, 0.180, 4_500},
		{720_000, 0.195, 9_900},
		{1_800_000, 0.205, 17_100},
		{3_600_000, 0.230, 62_100},
		{4_800_000, 0.305, 540_000},
	}
)

// profit presumption percentages by sector (Lucro Presumido)
var (
	irpjPresumption = map[string]float64{
		"comercio":  0.08,
		"industria": 0.08,
		"servicos":  0.32,
	}
	csllPresumption = map[string]float64{
		"comercio":  0.12,
		"industria": 0.12,
		"servicos":  0.32,
	}
)

// effectiveSimplesRate computes the blended effective rate for a
// twelve-month revenue base against an annex table.
func effectiveSimplesRate(rbt12 float64, table []bracket) float64 {
	if rbt12 <= 0 {
		return table[0].rate
	}
	row := table[len(table)-1]
	for _, b := range table {
		if rbt12 <= b.upTo {
			row = b
			break
		}
	}
	return (rbt12*row.rate - row.deduction) / rbt12
}

// annexFor selects the annex table for a company: commerce and industry
// have fixed tables; services switch on the payroll-to-revenue ratio
// (Fator R).
func annexFor(in models.SimulationInput) []bracket {
	switch in.Sector {
	case "industria":
		return annexII
	case "servicos":
		revenue := in.AnnualRevenue
		if revenue <= 0 {
			return annexV
		}
		if in.Payroll/revenue >= FatorRThreshold {
			return annexIII
		}
		return annexV
	default:
		return annexI
	}
}

// revenueBase prefers the declared twelve-month base and falls back to
// the annual revenue when absent.
func revenueBase(in models.SimulationInput) float64 {
	if in.RBT12 > 0 {
		return in.RBT12
	}
	return in.AnnualRevenue
}

func computeSimples(in models.SimulationInput) models.RegimeCalculation {
	calc := models.RegimeCalculation{Regime: RegimeSimples, Eligible: true}
	base := revenueBase(in)
	if base > SimplesCeiling {
		calc.Eligible = false
		calc.Reason = "Receita bruta anual acima do teto de R$ 4,8 milhões do Simples Nacional"
		return calc
	}
	rate := effectiveSimplesRate(base, annexFor(in))
	calc.EffectiveRate = rate
	calc.AnnualTax = in.AnnualRevenue * rate
	return calc
}

func computeLucroPresumido(in models.SimulationInput) models.RegimeCalculation {
	calc := models.RegimeCalculation{Regime: RegimeLucroPresumido, Eligible: true}
	sector := in.Sector
	if _, ok := irpjPresumption[sector]; !ok {
		sector = "comercio"
	}

	irpjBase := in.AnnualRevenue * irpjPresumption[sector]
	csllBase := in.AnnualRevenue * csllPresumption[sector]

	irpj := irpjBase * 0.15
	if irpjBase > irpjSurchargeFloor {
		irpj += (irpjBase - irpjSurchargeFloor) * 0.10
	}
	csll := csllBase * 0.09
	pis := in.AnnualRevenue * 0.0065
	cofins := in.AnnualRevenue * 0.03

	calc.AnnualTax = irpj + csll + pis + cofins
	if in.AnnualRevenue > 0 {
		calc.EffectiveRate = calc.AnnualTax / in.AnnualRevenue
	}
	return calc
}

func computeLucroReal(in models.SimulationInput) models.RegimeCalculation {
	calc := models.RegimeCalculation{Regime: RegimeLucroReal, Eligible: true}

	profit := in.AnnualRevenue - in.Costs - in.Payroll
	if profit < 0 {
		profit = 0
	}
	irpj := profit * 0.15
	if profit > irpjSurchargeFloor {
		irpj += (profit - irpjSurchargeFloor) * 0.10
	}
	csll := profit * 0.09

	// non-cumulative PIS/COFINS nets input credits against output tax
	outputs := in.AnnualRevenue * (0.0165 + 0.076)
	inputCredits := in.InputPurchases * (0.0165 + 0.076)
	pisCofins := outputs - inputCredits
	if pisCofins < 0 {
		pisCofins = 0
	}

	calc.CreditsGenerated = inputCredits
	calc.AnnualTax = irpj + csll + pisCofins
	if in.AnnualRevenue > 0 {
		calc.EffectiveRate = calc.AnnualTax / in.AnnualRevenue
	}
	return calc
}

// computeTransition models the blended-rate regime during the IBS/CBS
// transition. The gross variant collects the new consumption tax outside
// the blended document, generating credits usable by downstream
// customers; the net variant keeps it inside, offsetting the consumption
// share already embedded in the blended rate.
func computeTransition(in models.SimulationInput, gross bool) models.RegimeCalculation {
	regime := RegimeTransicaoDentro
	if gross {
		regime = RegimeTransicaoPorFora
	}
	calc := models.RegimeCalculation{Regime: regime, Eligible: true}

	base := revenueBase(in)
	if base > SimplesCeiling {
		calc.Eligible = false
		calc.Reason = "Variante de transição restrita a empresas dentro do teto do Simples Nacional"
		return calc
	}

	simplesTax := in.AnnualRevenue * effectiveSimplesRate(base, annexFor(in))
	newTax := in.AnnualRevenue * TransitionRate

	if gross {
		calc.AnnualTax = simplesTax + newTax
		calc.CreditsGenerated = newTax // destacado por fora, aproveitável pelo adquirente
	} else {
		offset := simplesTax * ConsumptionShare
		if offset > newTax {
			offset = newTax
		}
		calc.AnnualTax = simplesTax + newTax - offset
	}
	if in.AnnualRevenue > 0 {
		calc.EffectiveRate = calc.AnnualTax / in.AnnualRevenue
	}
	return calc
}
