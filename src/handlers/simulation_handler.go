package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/recupera/backend/src/logger"
	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/services"
	"github.com/username/recupera/backend/src/utils"
)

type SimulationHandler struct {
	simulationService services.SimulationService
}

func NewSimulationHandler(service services.SimulationService) *SimulationHandler {
	return &SimulationHandler{
		simulationService: service,
	}
}

// HandleRunSimulation compares the tax regimes for the company snapshot
// posted as JSON and returns the ranked result.
func (h *SimulationHandler) HandleRunSimulation(w http.ResponseWriter, r *http.Request) {
	companyID, ok := GetCompanyIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or company ID not found in context", http.StatusUnauthorized)
		return
	}

	var input models.SimulationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.L.Warn("Failed to decode simulation input", "companyID", companyID, "error", err)
		utils.SendJSONError(w, "Invalid JSON body for simulation input.", http.StatusBadRequest)
		return
	}

	result, err := h.simulationService.RunComparison(input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSimulation) {
			logger.L.Warn("Simulation rejected", "companyID", companyID, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Invalid simulation input: %v", err), http.StatusBadRequest)
			return
		}
		logger.L.Error("Internal error running simulation", "companyID", companyID, "error", err)
		utils.SendJSONError(w, "An internal error occurred while running the simulation.", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}
