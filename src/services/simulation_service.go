package services

import (
	"fmt"

	"github.com/username/recupera/backend/src/logger"
	"github.com/username/recupera/backend/src/metrics"
	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/simulator"
)

type simulationServiceImpl struct{}

func NewSimulationService() SimulationService {
	return &simulationServiceImpl{}
}

func (s *simulationServiceImpl) RunComparison(input models.SimulationInput) (*models.ComparisonResult, error) {
	if err := validateSimulationInput(input); err != nil {
		return nil, err
	}

	result := simulator.CompareRegimes(input)
	metrics.SimulationsRun.Inc()
	logger.L.Info("Simulation complete",
		"annualRevenue", input.AnnualRevenue, "sector", input.Sector,
		"recommended", result.Recommended)
	return result, nil
}

// validateSimulationInput rejects negative amounts. Absent amounts are
// zero and acceptable; the comparison degrades to whatever can still be
// computed.
func validateSimulationInput(input models.SimulationInput) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"receitaBrutaAnual", input.AnnualRevenue},
		{"rbt12", input.RBT12},
		{"folhaPagamento", input.Payroll},
		{"custosDedutiveis", input.Costs},
		{"comprasInsumos", input.InputPurchases},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("%w: %s não pode ser negativo", ErrInvalidSimulation, c.name)
		}
	}
	switch input.Sector {
	case "", "comercio", "industria", "servicos":
	default:
		return fmt.Errorf("%w: setor desconhecido %q", ErrInvalidSimulation, input.Sector)
	}
	switch input.CustomerProfile {
	case "", models.ProfileB2B, models.ProfileB2C, models.ProfileMixed:
	default:
		return fmt.Errorf("%w: perfil de clientes desconhecido %q", ErrInvalidSimulation, input.CustomerProfile)
	}
	return nil
}
