package simulator

import (
	"fmt"

	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/utils"
)

// TransitionDisclaimer accompanies every comparison that includes
// transitional-regime figures. The transition rates and crediting rules
// are still being regulated and may change before full adoption.
const TransitionDisclaimer = "As variantes de transição (IBS/CBS) usam as alíquotas-teste " +
	"da LC 214/2025 e estão sujeitas a regulamentação complementar."

// CompareRegimes computes the annual liability under every supported
// regime and recommends the cheapest among the eligible ones. Every
// regime appears in the result, eligible or not, in a fixed order; ties
// resolve to the first computed.
func CompareRegimes(in models.SimulationInput) *models.ComparisonResult {
	calcs := []models.RegimeCalculation{
		computeSimples(in),
		computeLucroPresumido(in),
		computeLucroReal(in),
		computeTransition(in, true),
		computeTransition(in, false),
	}

	for i := range calcs {
		calcs[i].AnnualTax = utils.Round2(calcs[i].AnnualTax)
		calcs[i].EffectiveRate = utils.RoundFloat(calcs[i].EffectiveRate, 4)
		calcs[i].CreditsGenerated = utils.Round2(calcs[i].CreditsGenerated)
	}

	result := &models.ComparisonResult{
		Calculations: calcs,
		Disclaimer:   models.Disclaimer + " " + TransitionDisclaimer,
	}

	best, runnerUp := -1, -1
	for i, c := range calcs {
		if !c.Eligible {
			continue
		}
		if best == -1 || c.AnnualTax < calcs[best].AnnualTax {
			runnerUp = best
			best = i
		} else if runnerUp == -1 || c.AnnualTax < calcs[runnerUp].AnnualTax {
			runnerUp = i
		}
	}
	if best == -1 {
		result.Justification = "Nenhum regime elegível para os dados informados."
		return result
	}

	result.Recommended = calcs[best].Regime
	if runnerUp != -1 {
		result.GapToRunnerUp = utils.Round2(calcs[runnerUp].AnnualTax - calcs[best].AnnualTax)
	}
	result.Justification = justify(calcs[best], in.CustomerProfile)
	return result
}

// justify explains the recommendation in terms the company's sales
// profile cares about: B2B buyers value transferable credits, B2C
// buyers only the final price.
func justify(best models.RegimeCalculation, profile models.CustomerProfile) string {
	base := fmt.Sprintf("O regime %s apresenta a menor carga anual estimada (R$ %.2f, alíquota efetiva de %.2f%%).",
		best.Regime, best.AnnualTax, best.EffectiveRate*100)

	switch profile {
	case models.ProfileB2B:
		if best.CreditsGenerated > 0 {
			return base + fmt.Sprintf(" Para clientes empresariais, o regime ainda gera R$ %.2f em créditos aproveitáveis pelos adquirentes.",
				best.CreditsGenerated)
		}
		return base + " Atenção: o regime não destaca créditos aproveitáveis por clientes empresariais, o que pode pesar em negociações B2B."
	case models.ProfileB2C:
		return base + " Como as vendas são ao consumidor final, créditos destacados não agregam valor comercial e o menor imposto prevalece."
	default:
		return base + " Com carteira mista de clientes, avalie se os créditos destacados a adquirentes empresariais compensam eventuais diferenças de carga."
	}
}
