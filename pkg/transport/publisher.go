package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/pubsub"
)

// Publisher forwards planner events from the in-process bus to a PUB
// socket, one frame per event, prefixed with the event topic.
type Publisher struct {
	opts   Options
	socket ListenSocket
	addr   string
	events *pubsub.PubSub
	log    logging.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// NewPublisher creates a publisher that will bind addr.
func NewPublisher(addr string, events *pubsub.PubSub, opts Options) (*Publisher, error) {
	opts = opts.withDefaults()
	socket, err := opts.Factory.NewPubSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	return &Publisher{
		opts:   opts,
		socket: socket,
		addr:   addr,
		events: events,
		log:    opts.Logger.With(logging.Component("publisher"), logging.String("addr", addr)),
	}, nil
}

// Start binds the socket and subscribes to every planner topic.
func (p *Publisher) Start(ctx context.Context) error {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if p.running {
		return fmt.Errorf("publisher already running")
	}
	if err := p.socket.Listen(p.addr); err != nil {
		return fmt.Errorf("failed to bind PUB socket to %s: %w", p.addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	for _, topic := range pubsub.Topics() {
		sub, err := p.events.Subscribe(ctx, topic)
		if err != nil {
			cancel()
			return err
		}
		p.wg.Add(1)
		go p.forward(sub)
	}

	p.cancel = cancel
	p.running = true
	p.log.Info("state publisher listening")
	return nil
}

// Stop unsubscribes, waits for in-flight sends and closes the socket.
func (p *Publisher) Stop() error {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if !p.running {
		return nil
	}
	p.cancel()
	p.wg.Wait()
	p.running = false

	p.log.Info("state publisher stopped")
	return p.socket.Close()
}

func (p *Publisher) forward(sub *pubsub.Subscription) {
	defer p.wg.Done()

	topic := string(sub.Topic())
	for msg := range sub.Channel() {
		frame, err := p.opts.Codec.Encode(topic, msg.Payload)
		if err != nil {
			p.log.Warn("dropping unencodable event", logging.String("topic", topic), logging.Error(err))
			p.opts.failed(topic, "encode")
			continue
		}
		// PUB never blocks; an error means the socket is closed.
		if err := p.socket.Send(frame); err != nil {
			p.opts.failed(topic, "send")
			continue
		}
		p.opts.sent(topic)
	}
}
