package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTransportMetrics() {
	r.TransportMessagesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tamp_transport_messages_total",
			Help: "Messages moved over sockets",
		},
		[]string{"direction", "channel"},
	)

	r.TransportErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tamp_transport_errors_total",
			Help: "Socket and codec errors",
		},
		[]string{"channel", "op"},
	)

	r.EventsDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tamp_events_dropped_total",
			Help: "In-process events skipped because a subscriber was full",
		},
	)
}
