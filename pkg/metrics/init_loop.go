package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLoopMetrics() {
	r.TicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tamp_loop_ticks_total",
			Help: "Total number of planning loop ticks",
		},
	)

	r.TickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tamp_loop_tick_duration_seconds",
			Help:    "Wall time of one loop tick, including actuator calls",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
	)

	r.DecisionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tamp_policy_decisions_total",
			Help: "Total number of next-node decisions",
		},
		[]string{"policy", "outcome"},
	)

	r.DecisionDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tamp_policy_decision_duration_seconds",
			Help:    "Time spent deciding the next node",
			Buckets: []float64{.00001, .0001, .001, .01, .1},
		},
		[]string{"policy"},
	)

	r.ActorStable = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tamp_actor_stable",
			Help: "1 when the actor stands on a node, 0 in transit",
		},
	)

	r.ActorNode = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tamp_actor_node",
			Help: "Node the actor stands on, or last left while in transit",
		},
	)

	r.StepsTravelled = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tamp_actor_steps_total",
			Help: "Total number of movement steps taken",
		},
	)

	r.IdleTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tamp_loop_idle_ticks_total",
			Help: "Ticks in which the actor neither moved nor executed",
		},
	)

	r.LoopFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tamp_loop_failures_total",
			Help: "Fatal errors that stopped the planning loop",
		},
	)
}
