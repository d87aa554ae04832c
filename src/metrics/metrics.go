package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recupera_documents_parsed_total",
		Help: "Documents successfully parsed, by kind.",
	}, []string{"kind"})

	DocumentsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recupera_documents_failed_total",
		Help: "Documents rejected by the parsers, by kind.",
	}, []string{"kind"})

	CreditsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recupera_credits_computed_total",
		Help: "Recoverable credit entries produced by the engine.",
	})

	RecoverableAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recupera_recoverable_amount_total",
		Help: "Sum of recoverable values computed, in BRL.",
	})

	SimulationsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recupera_simulations_run_total",
		Help: "Regime comparison simulations executed.",
	})

	RuleCatalogReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recupera_rule_catalog_reloads_total",
		Help: "Successful rule catalog reloads.",
	})
)
