package transport

import (
	"fmt"
	"sync"

	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/logging"
)

// Sink receives decoded arrivals. *planner.Loop satisfies it.
type Sink interface {
	Submit(ins ...instruction.Instruction)
	Withdraw(id instruction.ID)
}

// Feed listens on a PULL socket for instruction batches.
type Feed struct {
	opts   Options
	socket ListenSocket
	addr   string
	sink   Sink
	log    logging.Logger

	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// NewFeed creates a feed that will bind addr and deliver to sink.
func NewFeed(addr string, sink Sink, opts Options) (*Feed, error) {
	opts = opts.withDefaults()
	socket, err := opts.Factory.NewPullSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PULL socket: %w", err)
	}
	return &Feed{
		opts:   opts,
		socket: socket,
		addr:   addr,
		sink:   sink,
		log:    opts.Logger.With(logging.Component("feed"), logging.String("addr", addr)),
		stopCh: make(chan struct{}),
	}, nil
}

// Start binds the socket and begins receiving.
func (f *Feed) Start() error {
	f.runningMu.Lock()
	defer f.runningMu.Unlock()

	if f.running {
		return fmt.Errorf("feed already running")
	}
	if err := f.socket.Listen(f.addr); err != nil {
		return fmt.Errorf("failed to bind PULL socket to %s: %w", f.addr, err)
	}
	if err := f.socket.SetRecvDeadline(f.opts.RecvTimeout); err != nil {
		return err
	}

	f.running = true
	f.wg.Add(1)
	go f.recvLoop()

	f.log.Info("instruction feed listening")
	return nil
}

// Stop ends the receive loop and closes the socket.
func (f *Feed) Stop() error {
	f.runningMu.Lock()
	defer f.runningMu.Unlock()

	if !f.running {
		return nil
	}
	close(f.stopCh)
	f.running = false
	f.wg.Wait()

	f.log.Info("instruction feed stopped")
	return f.socket.Close()
}

// Running reports whether the feed is bound and receiving.
func (f *Feed) Running() bool {
	f.runningMu.Lock()
	defer f.runningMu.Unlock()
	return f.running
}

func (f *Feed) recvLoop() {
	defer f.wg.Done()

	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		msg, err := f.socket.Recv()
		if err != nil {
			continue // Timeout
		}
		f.opts.received(TopicInstructions)

		var batch Batch
		if err := f.opts.Codec.Decode(TopicInstructions, msg, &batch); err != nil {
			f.log.Warn("dropping malformed batch", logging.Error(err))
			f.opts.failed(TopicInstructions, "decode")
			continue
		}

		if len(batch.Instructions) > 0 {
			f.sink.Submit(batch.Instructions...)
		}
		for _, id := range batch.Withdraw {
			f.sink.Withdraw(id)
		}
		f.log.Debug("batch received",
			logging.Count(len(batch.Instructions)),
			logging.Int("withdraw", len(batch.Withdraw)))
	}
}
