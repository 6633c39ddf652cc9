package session

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Scheduler invokes fn every interval until the returned cancel is called.
// cancel must be idempotent and must not wait for an in-flight fn, because
// the controller cancels from inside its own tick.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler drives callbacks from a time.Ticker goroutine.
type TickerScheduler struct{}

// Every implements Scheduler.
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(stop) }) }
}

// ManualScheduler only fires when told to. The zero value is ready to use.
type ManualScheduler struct {
	mu       sync.Mutex
	next     int
	fns      map[int]func()
	interval time.Duration
}

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every implements Scheduler.
func (m *ManualScheduler) Every(interval time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fns == nil {
		m.fns = make(map[int]func())
	}
	id := m.next
	m.next++
	m.fns[id] = fn
	m.interval = interval

	return func() {
		m.mu.Lock()
		delete(m.fns, id)
		m.mu.Unlock()
	}
}

// Fire runs every registered callback once, synchronously, in registration
// order. Cancelled callbacks are not run.
func (m *ManualScheduler) Fire() {
	m.mu.Lock()
	ids := slices.Sorted(maps.Keys(m.fns))
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.fns[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// FireN calls Fire n times.
func (m *ManualScheduler) FireN(n int) {
	for range n {
		m.Fire()
	}
}

// Pending returns the number of live registrations.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fns)
}

// Interval returns the interval of the latest registration.
func (m *ManualScheduler) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}
