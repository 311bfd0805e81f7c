package transport

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Handler receives one decoded frame.
type Handler func(topic string, body json.RawMessage)

// Watcher subscribes to a planner's state publisher.
type Watcher struct {
	opts   Options
	socket SubscribeSocket

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// DialWatcher connects a SUB socket to addr and subscribes to topics; no
// topics means all of them.
func DialWatcher(addr string, topics []string, opts Options) (*Watcher, error) {
	opts = opts.withDefaults()
	socket, err := opts.Factory.NewSubSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}
	if err := socket.Dial(addr); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	if len(topics) == 0 {
		topics = []string{TopicSnapshot, TopicPosition, TopicExecution}
	}
	for _, t := range topics {
		if err := socket.Subscribe(Prefix(t)); err != nil {
			socket.Close()
			return nil, err
		}
	}
	if err := socket.SetRecvDeadline(opts.RecvTimeout); err != nil {
		socket.Close()
		return nil, err
	}

	return &Watcher{opts: opts, socket: socket, stopCh: make(chan struct{})}, nil
}

// Start delivers frames to h on a background goroutine until Stop.
func (w *Watcher) Start(h Handler) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.stopCh:
				return
			default:
			}

			msg, err := w.socket.Recv()
			if err != nil {
				continue // Timeout
			}
			topic, body, err := w.opts.Codec.Split(msg)
			if err != nil {
				w.opts.failed("watch", "decode")
				continue
			}
			w.opts.received(topic)
			h(topic, body)
		}
	}()
}

// Stop ends delivery and closes the socket.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		err = w.socket.Close()
	})
	return err
}
