package events

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	topic := NewTopic[int]()

	a, cancelA := topic.Subscribe(4)
	b, cancelB := topic.Subscribe(4)
	defer cancelA()
	defer cancelB()

	topic.Publish(42)

	for name, ch := range map[string]<-chan int{"a": a, "b": b} {
		select {
		case v := <-ch:
			if v != 42 {
				t.Errorf("%s received %d, want 42", name, v)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s never received the event", name)
		}
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	topic := NewTopic[string]()

	ch, cancel := topic.Subscribe(1)
	cancel()

	if n := topic.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d after cancel, want 0", n)
	}
	// Channel is closed after cancel.
	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}
	// Cancel twice is safe.
	cancel()

	topic.Publish("dropped")
}

func TestPublishDuringCancelDoesNotPanic(t *testing.T) {
	topic := NewTopic[int]()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				topic.Publish(i)
			}
		}
	}()

	// Churn subscriptions while the publisher runs. A send racing a
	// cancel's close would panic the publisher goroutine.
	for i := 0; i < 500; i++ {
		ch, cancel := topic.Subscribe(1)
		topic.Publish(i)
		cancel()
		for range ch {
		}
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not finish")
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	topic := NewTopic[int]()

	_, cancel := topic.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			topic.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}
