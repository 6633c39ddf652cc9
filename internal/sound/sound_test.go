package sound

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
)

func TestBellService(t *testing.T) {
	var buf bytes.Buffer
	b := NewBellService(&buf, map[string]bool{CueSessionComplete: true, CuePhaseChange: false})

	b.Play(CuePhaseChange)
	b.Play(CueSessionComplete)
	b.Play("unknown")
	require.Equal(t, "\a", buf.String())

	b.Stop()
	b.Play(CueSessionComplete)
	require.Equal(t, "\a", buf.String())
}

func TestBellService_DesktopNotification(t *testing.T) {
	var buf bytes.Buffer
	b := NewBellService(&buf, map[string]bool{CueSessionComplete: true, CueDesktopNotification: true})

	b.Play(CueSessionComplete)
	require.True(t, strings.HasPrefix(buf.String(), "\a"))
	require.Contains(t, buf.String(), "777;notify;bloom;Breathing session complete")
}

func TestNew(t *testing.T) {
	require.IsType(t, NoopService{}, New(nil, nil))
	require.IsType(t, NoopService{}, New(nil, map[string]bool{CuePhaseChange: false}))
	require.IsType(t, &BellService{}, New(nil, map[string]bool{CuePhaseChange: true}))
	require.IsType(t, NoopService{}, New(nil, map[string]bool{CueDesktopNotification: true}))
}

type fakeService struct {
	mu     sync.Mutex
	played []string
}

func (f *fakeService) Play(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, name)
}

func (f *fakeService) Stop() {}

func TestWatch(t *testing.T) {
	state := func(p breath.Phase) session.Event {
		return session.Event{Intention: "calm-before-event", State: breath.State{Phase: p}}
	}
	events := make(chan pubsub.Event[session.Event], 8)
	events <- pubsub.Event[session.Event]{Type: session.EventStarted, Payload: state(breath.Inhale)}
	events <- pubsub.Event[session.Event]{Type: session.EventTick, Payload: state(breath.Inhale)}
	events <- pubsub.Event[session.Event]{Type: session.EventTick, Payload: state(breath.Hold)}
	events <- pubsub.Event[session.Event]{Type: session.EventTick, Payload: state(breath.Hold)}
	events <- pubsub.Event[session.Event]{Type: session.EventTick, Payload: state(breath.Exhale)}
	events <- pubsub.Event[session.Event]{Type: session.EventCompleted, Payload: state(breath.Complete)}
	close(events)

	svc := &fakeService{}
	done := make(chan struct{})
	go func() {
		Watch(context.Background(), svc, events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return")
	}
	require.Equal(t, []string{CuePhaseChange, CuePhaseChange, CueSessionComplete}, svc.played)
}
