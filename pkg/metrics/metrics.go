package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"
)

// RecordTick records one loop tick and the actor position after it
func (r *Registry) RecordTick(duration time.Duration, stable bool, node int) {
	r.TicksTotal.Inc()
	r.TickDuration.Observe(duration.Seconds())
	if stable {
		r.ActorStable.Set(1)
	} else {
		r.ActorStable.Set(0)
	}
	r.ActorNode.Set(float64(node))
}

// RecordDecision records a next-node decision. outcome is "move" or
// "idle".
func (r *Registry) RecordDecision(policy, outcome string, duration time.Duration) {
	r.DecisionsTotal.WithLabelValues(policy, outcome).Inc()
	r.DecisionDuration.WithLabelValues(policy).Observe(duration.Seconds())
}

// RecordArrival records an instruction arrival outcome and the new ledger size
func (r *Registry) RecordArrival(outcome string, pending int) {
	r.InstructionsReceivedTotal.WithLabelValues(outcome).Inc()
	r.InstructionsPending.Set(float64(pending))
}

// RecordExecution records an executed instruction
func (r *Registry) RecordExecution(policy string, duration time.Duration, accumulated float64, pending int) {
	r.InstructionsExecuted.WithLabelValues(policy).Inc()
	r.ExecutionDuration.Observe(duration.Seconds())
	r.AccumulatedReward.Set(accumulated)
	r.InstructionsPending.Set(float64(pending))
}

// RecordTransport records a message sent ("out") or received ("in") on a channel
func (r *Registry) RecordTransport(direction, channel string) {
	r.TransportMessagesTotal.WithLabelValues(direction, channel).Inc()
}

// RecordTransportError records a failed socket or codec operation
func (r *Registry) RecordTransportError(channel, op string) {
	r.TransportErrorsTotal.WithLabelValues(channel, op).Inc()
}

// SyncDropped advances the dropped-events counter to total, which is a
// running count kept elsewhere.
func (r *Registry) SyncDropped(total uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if total > r.dropped {
		r.EventsDroppedTotal.Add(float64(total - r.dropped))
		r.dropped = total
	}
}

// UpdateSystemMetrics samples uptime, goroutines and memory
func (r *Registry) UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	r.UptimeSeconds.Set(time.Since(r.startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(ms.Alloc))
	r.MemorySysBytes.Set(float64(ms.Sys))
}

// InstrumentHandler wraps next with request count, latency and in-flight
// metrics labelled by path.
func (r *Registry) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.HTTPRequestsInFlight.Inc()
		defer r.HTTPRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, req)

		status := strconv.Itoa(rec.status)
		r.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
		r.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
