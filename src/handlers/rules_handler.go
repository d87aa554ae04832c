package handlers

import (
	"net/http"

	"github.com/username/recupera/backend/src/logger"
	"github.com/username/recupera/backend/src/services"
	"github.com/username/recupera/backend/src/utils"
)

type RulesHandler struct {
	ruleService services.RuleService
}

func NewRulesHandler(service services.RuleService) *RulesHandler {
	return &RulesHandler{
		ruleService: service,
	}
}

// HandleRefreshRules reloads the rule catalog from disk. On failure the
// previously loaded catalog stays active and the error is reported.
func (h *RulesHandler) HandleRefreshRules(w http.ResponseWriter, r *http.Request) {
	version, err := h.ruleService.Refresh()
	if err != nil {
		logger.L.Error("Rule catalog refresh failed", "error", err)
		utils.SendJSONError(w, "Failed to reload rule catalog; the previous version remains active.", http.StatusUnprocessableEntity)
		return
	}

	utils.SendJSON(w, map[string]string{"version": version}, http.StatusOK)
}

func (h *RulesHandler) HandleGetRuleVersion(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, map[string]string{"version": h.ruleService.Version()}, http.StatusOK)
}
