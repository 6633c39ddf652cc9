// Package sound plays audio cues for breathing sessions.
package sound

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"

	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
)

// Cue names, also the keys of sound.enabled_sounds in the config.
const (
	CuePhaseChange     = "phase_change"
	CueSessionComplete = "session_complete"

	// CueDesktopNotification is not played on its own: when enabled, the
	// session_complete cue also posts an OSC 777 desktop notification.
	CueDesktopNotification = "desktop_notification"
)

// Service plays named cues. Stop silences the service for good.
type Service interface {
	Play(name string)
	Stop()
}

// NoopService plays nothing.
type NoopService struct{}

func (NoopService) Play(string) {}
func (NoopService) Stop()       {}

// BellService rings the terminal bell for enabled cues.
type BellService struct {
	mu      sync.Mutex
	out     *termenv.Output
	enabled map[string]bool
	stopped bool
}

// NewBellService writes BEL to out (stderr when nil) for every cue whose
// entry in enabled is true.
func NewBellService(out io.Writer, enabled map[string]bool) *BellService {
	if out == nil {
		out = os.Stderr
	}
	cp := make(map[string]bool, len(enabled))
	for k, v := range enabled {
		cp[k] = v
	}
	return &BellService{out: termenv.NewOutput(out), enabled: cp}
}

// Play implements Service.
func (b *BellService) Play(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped || !b.enabled[name] {
		return
	}
	if _, err := b.out.WriteString("\a"); err != nil {
		log.ErrorErr(log.CatSound, "bell failed", err, "cue", name)
		return
	}
	if name == CueSessionComplete && b.enabled[CueDesktopNotification] {
		b.out.Notify("bloom", "Breathing session complete")
	}
}

// Stop implements Service.
func (b *BellService) Stop() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
}

// New returns a BellService when any playable cue is enabled, otherwise a
// NoopService.
func New(out io.Writer, enabled map[string]bool) Service {
	if enabled[CuePhaseChange] || enabled[CueSessionComplete] {
		return NewBellService(out, enabled)
	}
	return NoopService{}
}

// Watch plays CuePhaseChange whenever a tick event shows a new phase and
// CueSessionComplete on completion. It returns when events closes or ctx
// is done.
func Watch(ctx context.Context, svc Service, events <-chan pubsub.Event[session.Event]) {
	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case session.EventStarted:
				last = ev.Payload.State.Phase.String()
			case session.EventTick:
				phase := ev.Payload.State.Phase.String()
				if phase != last {
					last = phase
					svc.Play(CuePhaseChange)
				}
			case session.EventCompleted:
				last = ""
				svc.Play(CueSessionComplete)
			case session.EventAbandoned:
				last = ""
			}
		}
	}
}
