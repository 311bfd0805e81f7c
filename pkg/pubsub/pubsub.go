// Package pubsub fans planner events out to in-process observers.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Topic names an event stream.
type Topic string

const (
	// TopicSnapshot carries the full ledger after every mutation.
	TopicSnapshot Topic = "snapshot"
	// TopicPosition carries the actor position once per tick.
	TopicPosition Topic = "position"
	// TopicExecution carries every execution request sent to the actuator.
	TopicExecution Topic = "execution"
)

// Topics lists every planner topic.
func Topics() []Topic {
	return []Topic{TopicSnapshot, TopicPosition, TopicExecution}
}

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 100

// ErrClosed is returned by Subscribe after Shutdown.
var ErrClosed = errors.New("pubsub: closed")

// Message is one published event.
type Message struct {
	Topic   Topic
	Payload any
}

// PubSub is a non-blocking broadcaster: a subscriber whose buffer is full
// misses the message instead of stalling the publisher.
type PubSub struct {
	mu          sync.RWMutex
	subscribers map[Topic]map[*Subscription]struct{}
	buffer      int
	closed      bool
	shutdown    chan struct{}
	dropped     atomic.Uint64
}

// Subscription receives the messages of one topic.
type Subscription struct {
	topic   Topic
	channel chan Message
	ps      *PubSub
	cancel  context.CancelFunc
	once    sync.Once
}

// NewPubSub creates a broadcaster with DefaultBuffer per subscription.
func NewPubSub() *PubSub {
	return NewPubSubWithBuffer(DefaultBuffer)
}

// NewPubSubWithBuffer creates a broadcaster with the given per-subscription
// capacity; values below 1 are raised to 1.
func NewPubSubWithBuffer(buffer int) *PubSub {
	if buffer < 1 {
		buffer = 1
	}
	return &PubSub{
		subscribers: make(map[Topic]map[*Subscription]struct{}),
		buffer:      buffer,
		shutdown:    make(chan struct{}),
	}
}

// Subscribe registers a subscription that ends when ctx is cancelled,
// Unsubscribe is called or the broadcaster shuts down. Its channel is
// closed at that point.
func (ps *PubSub) Subscribe(ctx context.Context, topic Topic) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   topic,
		channel: make(chan Message, ps.buffer),
		ps:      ps,
		cancel:  cancel,
	}

	ps.mu.Lock()
	if ps.closed {
		ps.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	if ps.subscribers[topic] == nil {
		ps.subscribers[topic] = make(map[*Subscription]struct{})
	}
	ps.subscribers[topic][sub] = struct{}{}
	ps.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-ps.shutdown:
			cancel()
		}
	}()

	return sub, nil
}

// Publish delivers payload to every current subscriber of topic.
func (ps *PubSub) Publish(topic Topic, payload any) {
	msg := Message{Topic: topic, Payload: payload}

	// Sends never block, so holding the read lock keeps channels from
	// being closed underneath them.
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	if ps.closed {
		return
	}
	for sub := range ps.subscribers[topic] {
		select {
		case sub.channel <- msg:
		default:
			ps.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of live subscriptions to topic.
func (ps *PubSub) SubscriberCount(topic Topic) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}

// Dropped returns how many messages were skipped because a subscriber was
// full.
func (ps *PubSub) Dropped() uint64 {
	return ps.dropped.Load()
}

// Shutdown closes every subscription. It is safe to call more than once.
func (ps *PubSub) Shutdown() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	ps.closed = true
	close(ps.shutdown)

	for topic, subs := range ps.subscribers {
		for sub := range subs {
			sub.close()
		}
		delete(ps.subscribers, topic)
	}
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() Topic { return s.topic }

// Channel returns the subscription's message channel.
func (s *Subscription) Channel() <-chan Message {
	return s.channel
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if subs := s.ps.subscribers[s.topic]; subs != nil {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.ps.subscribers, s.topic)
		}
	}
	s.close()
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.channel) })
}
