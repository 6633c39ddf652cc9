package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Events the way session and garden declare their own.
const (
	testTick EventType = "tick"
	testDone EventType = "done"
)

type snapshot struct {
	Cycle    int
	Progress float64
}

func TestBroker_DeliversToEverySubscriber(t *testing.T) {
	broker := NewBroker[snapshot]()
	defer broker.Close()

	ctx := context.Background()
	subs := []<-chan Event[snapshot]{
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
	}
	require.Equal(t, 2, broker.SubscriberCount())

	broker.Publish(testTick, snapshot{Cycle: 1, Progress: 12.5})

	for i, ch := range subs {
		select {
		case event := <-ch:
			require.Equal(t, 1, event.Payload.Cycle, "subscriber %d", i)
			require.Equal(t, testTick, event.Type, "subscriber %d", i)
			require.False(t, event.Timestamp.IsZero())
		case <-time.After(100 * time.Millisecond):
			require.Fail(t, "timeout waiting for event", "subscriber %d", i)
		}
	}
}

func TestBroker_TimeSource(t *testing.T) {
	fixed := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	broker := NewBroker[int](WithTimeSource(func() time.Time { return fixed }))
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(CreatedEvent, 7)

	event := <-ch
	require.Equal(t, fixed, event.Timestamp)
}

func TestBroker_ContextCancellationUnsubscribes(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 },
		time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}

func TestBroker_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	broker := NewBroker[int](WithBufferSize(1))
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(testTick, 1)

	done := make(chan struct{})
	go func() {
		broker.Publish(testTick, 2)
		broker.Publish(testTick, 3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "Publish blocked")
	}

	event := <-ch
	require.Equal(t, 1, event.Payload)
	require.Equal(t, uint64(2), broker.Dropped())
}

func TestBroker_PublishEvictingKeepsNewestEvent(t *testing.T) {
	broker := NewBroker[int](WithBufferSize(2))
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(testTick, 1)
	broker.Publish(testTick, 2)

	done := make(chan struct{})
	go func() {
		broker.PublishEvicting(testDone, 3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "PublishEvicting blocked")
	}

	first, last := <-ch, <-ch
	require.Equal(t, 2, first.Payload)
	require.Equal(t, testDone, last.Type)
	require.Equal(t, 3, last.Payload)
	require.Equal(t, uint64(1), broker.Dropped())
}

func TestBroker_CloseIsIdempotentAndFinal(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, broker.SubscriberCount())

	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing after close yields a closed channel")

	broker.Publish(testTick, "ignored")
}
