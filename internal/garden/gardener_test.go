package garden

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
)

func TestGardener_GrowsFromSessionEvents(t *testing.T) {
	store := NewMemoryStore()
	g := NewGardener(store, newTestGrower(9), nil)
	defer g.Close()

	sched := session.NewManualScheduler()
	c := session.New(pattern.Default(), session.WithScheduler(sched), session.WithObservers(g))
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	grown := g.Broker().Subscribe(ctx)
	events := c.Broker().Subscribe(ctx)

	drain := func() {
		for {
			select {
			case ev := <-events:
				g.handle(ctx, ev)
			default:
				return
			}
		}
	}

	_, err := c.Start(ctx, pattern.SharpenFocus)
	require.NoError(t, err)
	for {
		drain()
		s, _ := c.Snapshot()
		if s.Complete() {
			break
		}
		c.SetPressing(s.Phase == breath.Inhale)
		sched.Fire()
	}
	c.Wait()

	o, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, o.Elements, MaxPerSession)
	require.Equal(t, 1, o.TotalSessions)

	ev := <-grown
	require.Equal(t, pubsub.CreatedEvent, ev.Type)
	require.Equal(t, pattern.SharpenFocus, ev.Payload.Intention)
}

func TestGardener_WatchStopsWhenChannelCloses(t *testing.T) {
	store := NewMemoryStore()
	g := NewGardener(store, newTestGrower(5), nil)
	defer g.Close()

	events := make(chan pubsub.Event[session.Event], 3)
	events <- pubsub.Event[session.Event]{Type: session.EventStarted}
	events <- pubsub.Event[session.Event]{
		Type:    session.EventTick,
		Payload: session.Event{Intention: "soothe-mind", State: breath.State{Progress: 30}},
	}
	close(events)

	done := make(chan struct{})
	go func() {
		g.Watch(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Watch did not return")
	}

	o, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, o.Elements, 2)
}

func TestGardener_RecordSession(t *testing.T) {
	store := NewMemoryStore()
	g := NewGardener(store, newTestGrower(1), nil)
	at := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)

	require.NoError(t, g.OnSessionCompleted(context.Background(), session.Completion{Intention: "x", CompletedAt: at}))
	o, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, o.TotalSessions)
	require.Equal(t, at, o.LastSessionAt)
	require.Equal(t, "garden", g.Name())
}
