package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the planner
type Registry struct {
	// HTTP Metrics (metrics and health endpoints)
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Loop Metrics
	TicksTotal        prometheus.Counter
	TickDuration      prometheus.Histogram
	DecisionsTotal    *prometheus.CounterVec
	DecisionDuration  *prometheus.HistogramVec
	ActorStable       prometheus.Gauge
	ActorNode         prometheus.Gauge
	StepsTravelled    prometheus.Counter
	IdleTicksTotal    prometheus.Counter
	LoopFailuresTotal prometheus.Counter

	// Ledger Metrics
	InstructionsReceivedTotal *prometheus.CounterVec
	InstructionsPending       prometheus.Gauge
	InstructionsExecuted      *prometheus.CounterVec
	ExecutionDuration         prometheus.Histogram
	AccumulatedReward         prometheus.Gauge
	RemoveNotFoundTotal       prometheus.Counter

	// Transport Metrics
	TransportMessagesTotal *prometheus.CounterVec
	TransportErrorsTotal   *prometheus.CounterVec
	EventsDroppedTotal     prometheus.Counter

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry  *prometheus.Registry
	startTime time.Time
	mu        sync.Mutex
	dropped   uint64
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}

	r.initHTTPMetrics()
	r.initLoopMetrics()
	r.initLedgerMetrics()
	r.initTransportMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
