package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLedgerMetrics() {
	r.InstructionsReceivedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tamp_instructions_received_total",
			Help: "Instruction arrivals by outcome (added, replaced, rejected, withdrawn)",
		},
		[]string{"outcome"},
	)

	r.InstructionsPending = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tamp_instructions_pending",
			Help: "Number of instructions currently in the ledger",
		},
	)

	r.InstructionsExecuted = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tamp_instructions_executed_total",
			Help: "Total number of executed instructions",
		},
		[]string{"policy"},
	)

	r.ExecutionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tamp_execution_duration_seconds",
			Help:    "Actuator time per executed instruction",
			Buckets: []float64{.01, .1, .5, 1, 2, 5, 10, 30, 60},
		},
	)

	r.AccumulatedReward = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tamp_accumulated_reward",
			Help: "Sum of discounted rewards of executed instructions",
		},
	)

	r.RemoveNotFoundTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tamp_ledger_remove_not_found_total",
			Help: "Removals of instructions that were no longer in the ledger",
		},
	)
}
