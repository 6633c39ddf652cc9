// Package session owns the single active breathing session: it drives the
// phase clock from a scheduler, latches the user's press input, and
// publishes snapshots and lifecycle events to the UI and observers.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/clock"
	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/metrics"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/tracing"
)

const (
	// DefaultInterval is the tick period; every tick advances the clock by
	// exactly this much.
	DefaultInterval = 100 * time.Millisecond

	// ObserverTimeout bounds each observer call.
	ObserverTimeout = 10 * time.Second
)

// Catalog resolves intention keys. *pattern.Catalog satisfies it.
type Catalog interface {
	Get(key string) (pattern.Pattern, error)
}

// Controller runs at most one session at a time.
type Controller struct {
	catalog         Catalog
	scheduler       Scheduler
	interval        time.Duration
	observers       []Observer
	tracer          trace.Tracer
	metrics         *metrics.Metrics
	clock           clock.Clock
	observerTimeout time.Duration
	broker          *pubsub.Broker[Event]

	pressing atomic.Bool

	mu        sync.Mutex
	gen       uint64
	has       bool
	state     breath.State
	intention string
	startedAt time.Time
	cancel    func()
	span      trace.Span
	spanCtx   context.Context

	inflight sync.WaitGroup
	// tails[i] closes when observer i's latest call returns; guarded by mu.
	tails []chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the default TickerScheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithObservers appends lifecycle observers.
func WithObservers(obs ...Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, obs...) }
}

// WithTracer records each session as a session.run span.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMetrics records session counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithClock sets the clock used for Completion timestamps.
func WithClock(cl clock.Clock) Option {
	return func(c *Controller) {
		if cl != nil {
			c.clock = cl
		}
	}
}

// WithObserverTimeout bounds each observer call.
func WithObserverTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.observerTimeout = d
		}
	}
}

// New creates an idle controller.
func New(catalog Catalog, opts ...Option) *Controller {
	c := &Controller{
		catalog:         catalog,
		scheduler:       TickerScheduler{},
		interval:        DefaultInterval,
		tracer:          noop.NewTracerProvider().Tracer("bloom"),
		clock:           clock.Real{},
		observerTimeout: ObserverTimeout,
		broker:          pubsub.NewBroker[Event](),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tails = make([]chan struct{}, len(c.observers))
	return c
}

// Broker publishes EventStarted, EventTick, EventCompleted and
// EventAbandoned.
func (c *Controller) Broker() *pubsub.Broker[Event] {
	return c.broker
}

// Interval returns the tick period.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Start begins a session for intention. It fails with an
// AlreadyActiveError while another session runs, or with the catalog's
// error for an unknown key.
func (c *Controller) Start(ctx context.Context, intention string) (breath.State, error) {
	c.mu.Lock()

	if c.has && c.state.Active {
		running := c.intention
		c.mu.Unlock()
		log.Warn(log.CatSession, "Start rejected", "intention", intention, "running", running)
		return breath.State{}, &AlreadyActiveError{Intention: running}
	}

	p, err := c.catalog.Get(intention)
	if err != nil {
		c.mu.Unlock()
		return breath.State{}, fmt.Errorf("starting session: %w", err)
	}

	c.gen++
	gen := c.gen
	c.has = true
	c.state = breath.NewState(p)
	c.intention = intention
	c.startedAt = c.clock.Now()

	spanCtx, span := c.tracer.Start(context.WithoutCancel(ctx), tracing.SpanSessionRun,
		trace.WithAttributes(
			attribute.String(tracing.AttrIntention, intention),
			attribute.String(tracing.AttrPatternName, p.Name),
			attribute.Int(tracing.AttrCycles, p.Cycles),
			attribute.Float64(tracing.AttrTotalSeconds, p.TotalDuration()),
		),
	)
	c.span, c.spanCtx = span, spanCtx
	c.cancel = c.scheduler.Every(c.interval, func() { c.tick(gen) })

	state := c.state
	c.broker.PublishEvicting(EventStarted, Event{Intention: intention, State: state})
	c.notify(spanCtx, func(ctx context.Context, o Observer) {
		o.OnSessionStarted(ctx, intention)
	})
	c.mu.Unlock()

	c.metrics.SessionStarted(intention)
	log.Info(log.CatSession, "Session started",
		"intention", intention, "pattern", p.Name, "cycles", p.Cycles, "total", p.TotalDuration())

	return state, nil
}

// SetPressing latches the press input. It may be called before Start and
// from any goroutine; only the value at the next tick matters.
func (c *Controller) SetPressing(pressing bool) {
	c.pressing.Store(pressing)
}

// Pressing returns the latched press input.
func (c *Controller) Pressing() bool {
	return c.pressing.Load()
}

// Snapshot returns a copy of the current state, or false when there is no
// session. A completed session stays visible, with ok still true, until the
// next Start or Reset so the completion screen can render it: callers that
// need "is a session running" must check State.Active, not ok.
func (c *Controller) Snapshot() (breath.State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.has
}

// Intention returns the key of the current or last completed session.
func (c *Controller) Intention() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has {
		return ""
	}
	return c.intention
}

// Tick advances the current session by one interval. The scheduler calls
// it; tests may call it directly.
func (c *Controller) Tick() {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.tick(gen)
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.has || !c.state.Active {
		c.mu.Unlock()
		return
	}

	prev := c.state
	c.state = breath.Tick(prev, c.interval.Seconds(), c.pressing.Load())
	state := c.state
	intention := c.intention

	if state.Phase != prev.Phase {
		c.recordTransition(prev, state)
	}
	c.broker.Publish(EventTick, Event{Intention: intention, State: state})

	if !state.Complete() {
		c.mu.Unlock()
		return
	}

	c.stopSchedule()
	now := c.clock.Now()
	completion := Completion{
		Intention:       intention,
		PatternName:     state.Pattern.Name,
		CyclesCompleted: state.Cycle,
		DurationSeconds: breath.TotalDuration(state.Pattern),
		StartedAt:       c.startedAt,
		CompletedAt:     now,
	}
	spanCtx := c.endSpan(tracing.OutcomeCompleted, state)
	c.broker.PublishEvicting(EventCompleted, Event{Intention: intention, State: state, Completion: &completion})
	c.notify(spanCtx, func(ctx context.Context, o Observer) {
		if err := o.OnSessionCompleted(ctx, completion); err != nil {
			name := observerName(o)
			log.ErrorErr(log.CatSession, "Completion observer failed", err, "observer", name)
			c.metrics.ObserverFailed(name)
		}
	})
	wall := now.Sub(c.startedAt)
	c.mu.Unlock()

	c.metrics.SessionCompleted(intention, wall)
	log.Info(log.CatSession, "Session completed",
		"intention", intention, "cycles", completion.CyclesCompleted, "wall", wall.Round(time.Second))
}

// Reset abandons a running session, or clears a completed one so Snapshot
// reports no session. It is a no-op without a session.
func (c *Controller) Reset() {
	c.mu.Lock()
	if !c.has {
		c.mu.Unlock()
		return
	}

	wasActive := c.state.Active
	intention := c.intention
	state := c.state

	c.gen++
	c.stopSchedule()
	c.has = false
	c.state = breath.State{}
	c.intention = ""

	if !wasActive {
		c.mu.Unlock()
		return
	}

	spanCtx := c.endSpan(tracing.OutcomeAbandoned, state)
	c.broker.PublishEvicting(EventAbandoned, Event{Intention: intention, State: state})
	c.notify(spanCtx, func(ctx context.Context, o Observer) {
		o.OnSessionAbandoned(ctx)
	})
	c.mu.Unlock()

	c.metrics.SessionAbandoned(intention)
	log.Info(log.CatSession, "Session abandoned",
		"intention", intention, "cycle", state.Cycle, "progress", fmt.Sprintf("%.1f", state.Progress))
}

// Stop is an alias for Reset.
func (c *Controller) Stop() {
	c.Reset()
}

// Wait blocks until every in-flight observer call has returned.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close abandons any running session, waits for observers and closes the
// broker.
func (c *Controller) Close() {
	c.Reset()
	c.Wait()
	c.broker.Close()
}

// recordTransition must be called with c.mu held.
func (c *Controller) recordTransition(prev, next breath.State) {
	if c.span == nil {
		return
	}
	if next.Cycle != prev.Cycle {
		c.span.AddEvent(tracing.EventCycleCompleted,
			trace.WithAttributes(attribute.Int(tracing.AttrCycle, prev.Cycle+1)))
	}
	c.span.AddEvent(tracing.EventPhaseChanged,
		trace.WithAttributes(
			attribute.String(tracing.AttrPhase, next.Phase.String()),
			attribute.Int(tracing.AttrCycle, next.Cycle),
		))
	log.Debug(log.CatBreath, "Phase changed",
		"from", prev.Phase, "to", next.Phase, "cycle", next.Cycle, "progress", fmt.Sprintf("%.1f", next.Progress))
}

// stopSchedule must be called with c.mu held.
func (c *Controller) stopSchedule() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// endSpan must be called with c.mu held. It returns the span's context so
// observer calls join the session trace.
func (c *Controller) endSpan(outcome string, state breath.State) context.Context {
	ctx := c.spanCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.span != nil {
		c.span.SetAttributes(
			attribute.String(tracing.AttrOutcome, outcome),
			attribute.Int(tracing.AttrCyclesCompleted, state.Cycle),
		)
		if outcome == tracing.OutcomeCompleted {
			c.span.SetStatus(codes.Ok, "")
		}
		c.span.End()
	}
	c.span, c.spanCtx = nil, nil
	return ctx
}

// notify must be called with c.mu held. Each observer's calls run on their
// own goroutines but strictly one after another, in lifecycle order; the
// timeout starts once the previous call has returned.
func (c *Controller) notify(parent context.Context, call func(ctx context.Context, o Observer)) {
	for i, o := range c.observers {
		prev := c.tails[i]
		done := make(chan struct{})
		c.tails[i] = done

		c.inflight.Add(1)
		go func() {
			defer c.inflight.Done()
			defer close(done)
			if prev != nil {
				<-prev
			}
			ctx, cancel := context.WithTimeout(parent, c.observerTimeout)
			defer cancel()
			call(ctx, o)
		}()
	}
}

func observerName(o Observer) string {
	if n, ok := o.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", o)
}
