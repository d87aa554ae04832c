package services

import (
	"fmt"
	"sync"

	"github.com/username/recupera/backend/src/logger"
	"github.com/username/recupera/backend/src/metrics"
	"github.com/username/recupera/backend/src/taxonomy"
)

type ruleServiceImpl struct {
	catalogPath string

	mu      sync.RWMutex
	current *taxonomy.RuleSet
}

// NewRuleService loads the catalog once at startup and fails fast on an
// invalid file. Later refreshes keep the previous catalog on error.
func NewRuleService(catalogPath string) (RuleService, error) {
	rs, err := taxonomy.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading rule catalog from %s: %w", catalogPath, err)
	}
	logger.L.Info("Rule catalog loaded", "path", catalogPath, "version", rs.Version, "rules", len(rs.Rules))
	return &ruleServiceImpl{catalogPath: catalogPath, current: rs}, nil
}

func (s *ruleServiceImpl) Current() *taxonomy.RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *ruleServiceImpl) Refresh() (string, error) {
	rs, err := taxonomy.Load(s.catalogPath)
	if err != nil {
		logger.L.Error("Rule catalog refresh failed, keeping current version",
			"path", s.catalogPath, "currentVersion", s.Version(), "error", err)
		return "", fmt.Errorf("refreshing rule catalog: %w", err)
	}

	s.mu.Lock()
	s.current = rs
	s.mu.Unlock()

	metrics.RuleCatalogReloads.Inc()
	logger.L.Info("Rule catalog refreshed", "version", rs.Version, "rules", len(rs.Rules))
	return rs.Version, nil
}

func (s *ruleServiceImpl) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Version
}
