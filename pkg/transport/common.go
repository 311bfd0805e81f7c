package transport

import (
	"time"

	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/metrics"
)

// defaultRecvTimeout bounds how long a receive loop blocks before it
// rechecks for Stop.
const defaultRecvTimeout = 250 * time.Millisecond

// Options are shared by every endpoint.
type Options struct {
	Factory     SocketFactory
	Codec       Codec
	RecvTimeout time.Duration
	Logger      logging.Logger
	Metrics     *metrics.Registry
}

func (o Options) withDefaults() Options {
	if o.Factory == nil {
		o.Factory = NewNNGSocketFactory()
	}
	if o.RecvTimeout <= 0 {
		o.RecvTimeout = defaultRecvTimeout
	}
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	return o
}

func (o Options) sent(channel string) {
	if o.Metrics != nil {
		o.Metrics.RecordTransport("out", channel)
	}
}

func (o Options) received(channel string) {
	if o.Metrics != nil {
		o.Metrics.RecordTransport("in", channel)
	}
}

func (o Options) failed(channel, op string) {
	if o.Metrics != nil {
		o.Metrics.RecordTransportError(channel, op)
	}
}
