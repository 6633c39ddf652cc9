package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Broker fans events out to every subscriber. Slow subscribers lose events
// rather than stalling the publisher; the loss is counted in Dropped.
// Publish drops the new event, PublishEvicting drops the oldest ones.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan Event[T]]struct{}
	done       chan struct{}
	bufferSize int
	now        func() time.Time
	dropped    atomic.Uint64
}

// BrokerOption configures a Broker.
type BrokerOption func(*brokerConfig)

type brokerConfig struct {
	bufferSize int
	now        func() time.Time
}

// WithBufferSize sets the per-subscriber channel capacity.
func WithBufferSize(size int) BrokerOption {
	return func(c *brokerConfig) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// WithTimeSource overrides the clock used to stamp events.
func WithTimeSource(now func() time.Time) BrokerOption {
	return func(c *brokerConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewBroker creates a broker. Subscribers get a 64 event buffer unless
// WithBufferSize says otherwise.
func NewBroker[T any](opts ...BrokerOption) *Broker[T] {
	cfg := brokerConfig{bufferSize: defaultBufferSize, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: cfg.bufferSize,
		now:        cfg.now,
	}
}

// Subscribe returns a channel of events that is closed when ctx is cancelled
// or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed() {
			return
		}
		delete(b.subs, sub)
		close(sub)
	}()

	return sub
}

// Publish delivers an event to all subscribers without blocking.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed() {
		return
	}

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: b.now(),
	}

	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// PublishEvicting delivers an event to all subscribers without blocking and
// without losing it: a full subscriber has its oldest buffered events
// evicted to make room. Use it for events a subscriber must not miss, such
// as the end of a session, when most traffic is disposable.
func (b *Broker[T]) PublishEvicting(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed() {
		return
	}

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: b.now(),
	}

	for sub := range b.subs {
		for delivered := false; !delivered; {
			select {
			case sub <- event:
				delivered = true
			default:
				select {
				case <-sub:
					b.dropped.Add(1)
				default:
				}
			}
		}
	}
}

// Close shuts the broker down and closes every subscriber channel.
// Safe to call more than once.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		return
	}

	close(b.done)
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber
// buffer was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Broker[T]) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
