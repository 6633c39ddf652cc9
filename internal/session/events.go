package session

import (
	"context"
	"time"

	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/pubsub"
)

// Lifecycle event types published on Controller.Broker.
const (
	EventStarted   pubsub.EventType = "session.started"
	EventTick      pubsub.EventType = "session.tick"
	EventCompleted pubsub.EventType = "session.completed"
	EventAbandoned pubsub.EventType = "session.abandoned"
)

// Event is the payload of every lifecycle event. Completion is only set for
// EventCompleted.
type Event struct {
	Intention  string
	State      breath.State
	Completion *Completion
}

// Completion describes a session that ran all of its cycles.
type Completion struct {
	Intention       string    `json:"intention"`
	PatternName     string    `json:"pattern_name"`
	CyclesCompleted int       `json:"cycles_completed"`
	DurationSeconds float64   `json:"duration_seconds"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Observer is told about session lifecycle changes. Calls arrive on their
// own goroutine with a bounded context and never block the tick. Calls to
// one observer are serialized in lifecycle order: OnSessionStarted always
// returns before the same session's OnSessionCompleted or
// OnSessionAbandoned begins.
type Observer interface {
	OnSessionStarted(ctx context.Context, intention string)
	OnSessionCompleted(ctx context.Context, c Completion) error
	OnSessionAbandoned(ctx context.Context)
}

// Named observers report under their name in logs and metrics.
type Named interface {
	Name() string
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	ObserverName string
	Started      func(ctx context.Context, intention string)
	Completed    func(ctx context.Context, c Completion) error
	Abandoned    func(ctx context.Context)
}

// Name implements Named.
func (f ObserverFuncs) Name() string { return f.ObserverName }

// OnSessionStarted implements Observer.
func (f ObserverFuncs) OnSessionStarted(ctx context.Context, intention string) {
	if f.Started != nil {
		f.Started(ctx, intention)
	}
}

// OnSessionCompleted implements Observer.
func (f ObserverFuncs) OnSessionCompleted(ctx context.Context, c Completion) error {
	if f.Completed != nil {
		return f.Completed(ctx, c)
	}
	return nil
}

// OnSessionAbandoned implements Observer.
func (f ObserverFuncs) OnSessionAbandoned(ctx context.Context) {
	if f.Abandoned != nil {
		f.Abandoned(ctx)
	}
}
