package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/clock"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/tracing"
)

// recorder is an Observer that remembers every call.
type recorder struct {
	mu          sync.Mutex
	started     []string
	completions []Completion
	abandoned   int
	err         error
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnSessionStarted(_ context.Context, intention string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, intention)
}

func (r *recorder) OnSessionCompleted(_ context.Context, c Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, c)
	return r.err
}

func (r *recorder) OnSessionAbandoned(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned++
}

func (r *recorder) snapshot() ([]string, []Completion, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.started...), append([]Completion(nil), r.completions...), r.abandoned
}

// quick is a 1s inhale, 1s exhale, 2 cycle pattern: 40 ticks of 100ms with a
// cooperative user.
var quick = pattern.Intention{
	Key:     "quick",
	Title:   "Quick",
	Pattern: pattern.Pattern{Name: "Quick", Inhale: 1, Exhale: 1, Cycles: 2},
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *ManualScheduler, *recorder) {
	t.Helper()
	catalog, err := pattern.NewCatalog(append(pattern.Builtins(), quick)...)
	require.NoError(t, err)

	sched := NewManualScheduler()
	rec := &recorder{}
	base := []Option{WithScheduler(sched), WithObservers(rec)}
	c := New(catalog, append(base, opts...)...)
	t.Cleanup(c.Close)
	return c, sched, rec
}

// breathe fires the scheduler n times, pressing while the clock is in the
// inhale phase.
func breathe(c *Controller, sched *ManualScheduler, n int) {
	for range n {
		s, _ := c.Snapshot()
		c.SetPressing(s.Phase == breath.Inhale)
		sched.Fire()
	}
}

func TestStart_InitialState(t *testing.T) {
	c, sched, rec := newTestController(t)

	s, err := c.Start(context.Background(), pattern.CalmBeforeEvent)
	require.NoError(t, err)
	require.True(t, s.Active)
	require.Equal(t, breath.Inhale, s.Phase)
	require.Equal(t, 4.0, s.Remaining)
	require.Equal(t, "Box Breathing", s.Pattern.Name)
	require.Equal(t, 1, sched.Pending())
	require.Equal(t, DefaultInterval, sched.Interval())

	snap, ok := c.Snapshot()
	require.True(t, ok)
	require.Equal(t, s, snap)
	require.Equal(t, pattern.CalmBeforeEvent, c.Intention())

	c.Wait()
	started, _, _ := rec.snapshot()
	require.Equal(t, []string{pattern.CalmBeforeEvent}, started)
}

func TestStart_UnknownIntention(t *testing.T) {
	c, sched, _ := newTestController(t)

	_, err := c.Start(context.Background(), "no-such-thing")
	var unknown *pattern.UnknownIntentionError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, 0, sched.Pending())

	_, ok := c.Snapshot()
	require.False(t, ok)
}

func TestStart_AlreadyActiveLeavesFirstSessionUntouched(t *testing.T) {
	c, sched, _ := newTestController(t)

	_, err := c.Start(context.Background(), pattern.SharpenFocus)
	require.NoError(t, err)
	breathe(c, sched, 15)
	before, _ := c.Snapshot()

	_, err = c.Start(context.Background(), pattern.SootheMind)
	require.ErrorIs(t, err, ErrAlreadyActive)
	var active *AlreadyActiveError
	require.ErrorAs(t, err, &active)
	require.Equal(t, pattern.SharpenFocus, active.Intention)

	after, _ := c.Snapshot()
	require.Equal(t, before, after)
	require.Equal(t, pattern.SharpenFocus, c.Intention())
	require.Equal(t, 1, sched.Pending())
}

func TestTick_UsesLatchedPress(t *testing.T) {
	c, sched, _ := newTestController(t)
	c.SetPressing(true)

	_, err := c.Start(context.Background(), pattern.CalmBeforeEvent)
	require.NoError(t, err)

	sched.FireN(10)
	s, _ := c.Snapshot()
	require.InDelta(t, 3.0, s.Remaining, 1e-9)
	require.True(t, s.Pressing)

	c.SetPressing(false)
	c.SetPressing(true)
	c.SetPressing(false)
	sched.Fire()
	s, _ = c.Snapshot()
	require.InDelta(t, 3.0, s.Remaining, 1e-9, "only the value at the tick counts")
	require.False(t, s.Pressing)
}

func TestTick_CompletesOnceAndNotifiesObservers(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC))
	c, sched, rec := newTestController(t, WithClock(fake))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := c.Broker().Subscribe(ctx)

	_, err := c.Start(context.Background(), "quick")
	require.NoError(t, err)
	fake.Advance(4 * time.Second)

	breathe(c, sched, 39)
	s, _ := c.Snapshot()
	require.True(t, s.Active)

	breathe(c, sched, 1)
	s, ok := c.Snapshot()
	require.True(t, ok, "completed state stays visible")
	require.False(t, s.Active, "ok alone does not mean a session is running")
	require.True(t, s.Complete())
	require.Equal(t, 100.0, s.Progress)
	require.Equal(t, 0, sched.Pending(), "schedule cancelled on completion")

	breathe(c, sched, 20)
	c.Tick()

	c.Wait()
	_, completions, abandoned := rec.snapshot()
	require.Len(t, completions, 1)
	require.Zero(t, abandoned)
	got := completions[0]
	require.Equal(t, "quick", got.Intention)
	require.Equal(t, "Quick", got.PatternName)
	require.Equal(t, 2, got.CyclesCompleted)
	require.Equal(t, 4.0, got.DurationSeconds)
	require.Equal(t, fake.Now(), got.CompletedAt)

	var started, ticks, completed int
	for done := false; !done; {
		select {
		case e := <-events:
			switch e.Type {
			case EventStarted:
				started++
			case EventTick:
				ticks++
			case EventCompleted:
				completed++
				require.NotNil(t, e.Payload.Completion)
			}
		default:
			done = true
		}
	}
	require.Equal(t, 1, started)
	require.Equal(t, 40, ticks)
	require.Equal(t, 1, completed)
}

func TestStart_AfterCompletionBeginsFreshSession(t *testing.T) {
	c, sched, _ := newTestController(t)

	_, err := c.Start(context.Background(), "quick")
	require.NoError(t, err)
	breathe(c, sched, 40)
	s, _ := c.Snapshot()
	require.True(t, s.Complete())

	s, err = c.Start(context.Background(), pattern.JustBreathe)
	require.NoError(t, err)
	require.True(t, s.Active)
	require.Equal(t, 5.5, s.Remaining)
}

func TestReset_CancelsAndIgnoresLaterFires(t *testing.T) {
	c, sched, rec := newTestController(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := c.Broker().Subscribe(ctx)

	_, err := c.Start(context.Background(), pattern.DriftToSleep)
	require.NoError(t, err)
	breathe(c, sched, 5)

	c.Reset()
	_, ok := c.Snapshot()
	require.False(t, ok)
	require.Equal(t, 0, sched.Pending())

	sched.FireN(10)
	c.Tick()
	_, ok = c.Snapshot()
	require.False(t, ok)

	c.Reset()
	c.Stop()

	c.Wait()
	_, completions, abandoned := rec.snapshot()
	require.Empty(t, completions)
	require.Equal(t, 1, abandoned)

	var abandonedEvents int
	for done := false; !done; {
		select {
		case e := <-events:
			if e.Type == EventAbandoned {
				abandonedEvents++
				require.Equal(t, pattern.DriftToSleep, e.Payload.Intention)
			}
		default:
			done = true
		}
	}
	require.Equal(t, 1, abandonedEvents)
}

func TestReset_AfterCompletionClearsWithoutAbandoning(t *testing.T) {
	c, sched, rec := newTestController(t)
	_, err := c.Start(context.Background(), "quick")
	require.NoError(t, err)
	breathe(c, sched, 40)

	c.Reset()
	_, ok := c.Snapshot()
	require.False(t, ok)

	c.Wait()
	_, _, abandoned := rec.snapshot()
	require.Zero(t, abandoned)
}

// leakyScheduler never cancels, so its callbacks outlive their session.
type leakyScheduler struct {
	fns []func()
}

func (l *leakyScheduler) Every(_ time.Duration, fn func()) func() {
	l.fns = append(l.fns, fn)
	return func() {}
}

func TestStaleTimerCallbackIsNoop(t *testing.T) {
	catalog := pattern.Default()
	leaky := &leakyScheduler{}
	c := New(catalog, WithScheduler(leaky))
	t.Cleanup(c.Close)

	_, err := c.Start(context.Background(), pattern.SharpenFocus)
	require.NoError(t, err)
	c.Reset()

	_, err = c.Start(context.Background(), pattern.SharpenFocus)
	require.NoError(t, err)
	c.SetPressing(true)
	require.Len(t, leaky.fns, 2)

	for range 5 {
		leaky.fns[0]()
	}
	s, _ := c.Snapshot()
	require.Equal(t, 4.0, s.Remaining, "first session's timer must not drive the second")

	leaky.fns[1]()
	s, _ = c.Snapshot()
	require.InDelta(t, 3.9, s.Remaining, 1e-9)
}

func TestObserverFailureDoesNotAffectSession(t *testing.T) {
	c, sched, rec := newTestController(t)
	rec.err = errors.New("backend down")

	_, err := c.Start(context.Background(), "quick")
	require.NoError(t, err)
	breathe(c, sched, 40)
	c.Wait()

	s, ok := c.Snapshot()
	require.True(t, ok)
	require.True(t, s.Complete())
	_, completions, _ := rec.snapshot()
	require.Len(t, completions, 1)
}

func TestObserverDoesNotBlockTick(t *testing.T) {
	release := make(chan struct{})
	slow := ObserverFuncs{
		ObserverName: "slow",
		Started: func(ctx context.Context, _ string) {
			select {
			case <-release:
			case <-ctx.Done():
			}
		},
	}
	c, sched, _ := newTestController(t, WithObservers(slow))

	_, err := c.Start(context.Background(), "quick")
	require.NoError(t, err)
	breathe(c, sched, 40)

	s, _ := c.Snapshot()
	require.True(t, s.Complete())
	close(release)
}

func TestObserverTimeoutBoundsContext(t *testing.T) {
	deadline := make(chan time.Time, 1)
	obs := ObserverFuncs{
		Started: func(ctx context.Context, _ string) {
			d, _ := ctx.Deadline()
			deadline <- d
		},
	}
	c, _, _ := newTestController(t, WithObservers(obs), WithObserverTimeout(time.Second))

	before := time.Now()
	_, err := c.Start(context.Background(), "quick")
	require.NoError(t, err)

	d := <-deadline
	require.WithinDuration(t, before.Add(time.Second), d, 500*time.Millisecond)
}

func TestTracingRecordsSessionSpan(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	c, sched, _ := newTestController(t, WithTracer(tp.Tracer("test")))

	_, err := c.Start(context.Background(), "quick")
	require.NoError(t, err)
	breathe(c, sched, 40)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, tracing.SpanSessionRun, ended[0].Name())

	attrs := map[string]any{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	require.Equal(t, "quick", attrs[tracing.AttrIntention])
	require.Equal(t, tracing.OutcomeCompleted, attrs[tracing.AttrOutcome])
	require.NotEmpty(t, ended[0].Events())
}

func TestTickerSchedulerDrivesRealSession(t *testing.T) {
	tiny := pattern.Intention{
		Key:     "tiny",
		Pattern: pattern.Pattern{Name: "Tiny", Inhale: 0.02, Exhale: 0.02, Cycles: 3},
	}
	catalog, err := pattern.NewCatalog(tiny)
	require.NoError(t, err)
	c := New(catalog, WithInterval(time.Millisecond))
	t.Cleanup(c.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := pubsub.NewContinuousListener(ctx, c.Broker())

	c.SetPressing(true)
	_, err = c.Start(context.Background(), "tiny")
	require.NoError(t, err)

	msg := listener.Listen()()
	event, ok := msg.(pubsub.Event[Event])
	require.True(t, ok)
	require.Equal(t, EventStarted, event.Type)

	// Exhale is paused while still pressing.
	require.Eventually(t, func() bool {
		s, _ := c.Snapshot()
		return s.Phase == breath.Exhale
	}, 5*time.Second, time.Millisecond)

	// Inhale of the next cycle is paused once released.
	c.SetPressing(false)
	require.Eventually(t, func() bool {
		s, _ := c.Snapshot()
		return s.Phase == breath.Inhale && s.Cycle == 1
	}, 5*time.Second, time.Millisecond)
}

// drain empties a subscription that nobody read during the session.
func drain(events <-chan pubsub.Event[Event]) []pubsub.Event[Event] {
	var got []pubsub.Event[Event]
	for {
		select {
		case e := <-events:
			got = append(got, e)
		default:
			return got
		}
	}
}

func TestCompletedReachesSubscriberThatFellBehind(t *testing.T) {
	c, sched, _ := newTestController(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := c.Broker().Subscribe(ctx)

	// 4s in, 6s out, 10 cycles: 1000 ticks, far more than the buffer holds.
	_, err := c.Start(context.Background(), pattern.SharpenFocus)
	require.NoError(t, err)
	for i := 0; sched.Pending() > 0; i++ {
		require.Less(t, i, 2000)
		breathe(c, sched, 1)
	}
	s, _ := c.Snapshot()
	require.True(t, s.Complete())
	require.NotZero(t, c.Broker().Dropped())

	got := drain(events)
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	require.Equal(t, EventCompleted, last.Type)
	require.NotNil(t, last.Payload.Completion)
	require.Equal(t, 10, last.Payload.Completion.CyclesCompleted)
}

func TestAbandonedReachesSubscriberThatFellBehind(t *testing.T) {
	c, sched, _ := newTestController(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := c.Broker().Subscribe(ctx)

	_, err := c.Start(context.Background(), pattern.SharpenFocus)
	require.NoError(t, err)
	breathe(c, sched, 200)
	c.Reset()

	got := drain(events)
	require.Equal(t, EventAbandoned, got[len(got)-1].Type)
}

func TestObserverCallsArriveInLifecycleOrder(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}
	obs := ObserverFuncs{
		ObserverName: "ordered",
		Started: func(ctx context.Context, _ string) {
			<-release
			record("started")
		},
		Completed: func(context.Context, Completion) error {
			record("completed")
			return nil
		},
	}
	c, sched, _ := newTestController(t, WithObservers(obs))

	_, err := c.Start(context.Background(), "quick")
	require.NoError(t, err)
	breathe(c, sched, 40)
	s, _ := c.Snapshot()
	require.True(t, s.Complete(), "a slow observer never holds up the session")

	close(release)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"started", "completed"}, order)
}
