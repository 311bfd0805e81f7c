package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"
)

func recvWithin(t *testing.T, sub *Subscription, d time.Duration) (Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-sub.Channel():
		return msg, ok
	case <-time.After(d):
		t.Fatal("Timeout waiting for message")
		return Message{}, false
	}
}

// TestBasicPubSub tests basic publish/subscribe functionality
func TestBasicPubSub(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), TopicPosition)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	ps.Publish(TopicPosition, "2")

	msg, ok := recvWithin(t, sub, time.Second)
	if !ok {
		t.Fatal("Channel closed unexpectedly")
	}
	if msg.Topic != TopicPosition || msg.Payload != "2" {
		t.Errorf("Expected position/2, got %s/%v", msg.Topic, msg.Payload)
	}
}

// TestMultipleSubscribers tests that every subscriber of a topic receives a message
func TestMultipleSubscribers(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	const numSubscribers = 5
	subs := make([]*Subscription, numSubscribers)
	for i := range subs {
		sub, err := ps.Subscribe(context.Background(), TopicSnapshot)
		if err != nil {
			t.Fatalf("Failed to subscribe %d: %v", i, err)
		}
		defer sub.Unsubscribe()
		subs[i] = sub
	}

	ps.Publish(TopicSnapshot, 42)

	for i, sub := range subs {
		msg, _ := recvWithin(t, sub, time.Second)
		if msg.Payload != 42 {
			t.Errorf("Subscriber %d: expected 42, got %v", i, msg.Payload)
		}
	}
}

// TestTopicIsolation tests that messages only reach their own topic
func TestTopicIsolation(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	pos, _ := ps.Subscribe(context.Background(), TopicPosition)
	exec, _ := ps.Subscribe(context.Background(), TopicExecution)

	ps.Publish(TopicExecution, "run")

	msg, _ := recvWithin(t, exec, time.Second)
	if msg.Payload != "run" {
		t.Errorf("Expected run, got %v", msg.Payload)
	}

	select {
	case msg := <-pos.Channel():
		t.Errorf("Position subscriber received %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestUnsubscribe tests that unsubscribing closes the channel and removes the subscriber
func TestUnsubscribe(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), TopicPosition)
	if got := ps.SubscriberCount(TopicPosition); got != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", got)
	}

	sub.Unsubscribe()
	sub.Unsubscribe()

	if got := ps.SubscriberCount(TopicPosition); got != 0 {
		t.Errorf("Expected 0 subscribers, got %d", got)
	}
	if _, ok := <-sub.Channel(); ok {
		t.Error("Expected closed channel")
	}

	// Publishing to a topic with no subscribers is a no-op.
	ps.Publish(TopicPosition, "x")
}

// TestContextCancellation tests that cancelling the context ends the subscription
func TestContextCancellation(t *testing.T) {
	ps := NewPubSub()
	defer ps.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := ps.Subscribe(ctx, TopicSnapshot)
	cancel()

	if _, ok := recvWithin(t, sub, time.Second); ok {
		t.Error("Expected channel to close after cancel")
	}
	if got := ps.SubscriberCount(TopicSnapshot); got != 0 {
		t.Errorf("Expected 0 subscribers, got %d", got)
	}
}

// TestConcurrentPublish tests publishing from many goroutines
func TestConcurrentPublish(t *testing.T) {
	ps := NewPubSubWithBuffer(1000)
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), TopicPosition)

	const publishers, perPublisher = 10, 50
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				ps.Publish(TopicPosition, id*perPublisher+j)
			}
		}(i)
	}
	wg.Wait()

	if got := len(sub.Channel()); got != publishers*perPublisher {
		t.Errorf("Expected %d buffered messages, got %d", publishers*perPublisher, got)
	}
}

// TestSlowSubscriberDrops tests that a full subscriber never blocks the publisher
func TestSlowSubscriberDrops(t *testing.T) {
	ps := NewPubSubWithBuffer(2)
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), TopicPosition)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			ps.Publish(TopicPosition, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	if got := len(sub.Channel()); got != 2 {
		t.Errorf("Expected 2 buffered, got %d", got)
	}
	if got := ps.Dropped(); got != 3 {
		t.Errorf("Expected 3 dropped, got %d", got)
	}

	first, _ := recvWithin(t, sub, time.Second)
	if first.Payload != 0 {
		t.Errorf("Expected oldest message first, got %v", first.Payload)
	}
}

// TestShutdown tests that shutdown closes subscriptions and rejects new ones
func TestShutdown(t *testing.T) {
	ps := NewPubSub()

	sub, _ := ps.Subscribe(context.Background(), TopicExecution)
	ps.Shutdown()
	ps.Shutdown()

	if _, ok := recvWithin(t, sub, time.Second); ok {
		t.Error("Expected closed channel after shutdown")
	}
	if _, err := ps.Subscribe(context.Background(), TopicExecution); err != ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}

	// Publishing and unsubscribing after shutdown must not panic.
	ps.Publish(TopicExecution, "late")
	sub.Unsubscribe()
}

func TestTopics(t *testing.T) {
	want := []Topic{"snapshot", "position", "execution"}
	got := Topics()
	if len(got) != len(want) {
		t.Fatalf("Expected %d topics, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Topics()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
