package garden

import (
	"context"

	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/metrics"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
)

// Gardener grows elements from session tick events and records completed
// sessions. It implements session.Observer.
type Gardener struct {
	store   Store
	grower  *Grower
	metrics *metrics.Metrics
	broker  *pubsub.Broker[Element]
}

// NewGardener wires a store and grower. m may be nil.
func NewGardener(store Store, grower *Grower, m *metrics.Metrics) *Gardener {
	return &Gardener{
		store:   store,
		grower:  grower,
		metrics: m,
		broker:  pubsub.NewBroker[Element](),
	}
}

// Broker publishes every newly grown element as a CreatedEvent.
func (g *Gardener) Broker() *pubsub.Broker[Element] {
	return g.broker
}

// Store returns the underlying store.
func (g *Gardener) Store() Store {
	return g.store
}

// Watch consumes session events until ctx is done or events closes.
func (g *Gardener) Watch(ctx context.Context, events <-chan pubsub.Event[session.Event]) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			g.handle(ctx, ev)
		}
	}
}

func (g *Gardener) handle(ctx context.Context, ev pubsub.Event[session.Event]) {
	switch ev.Type {
	case session.EventStarted:
		g.grower.Reset()
	case session.EventTick, session.EventCompleted:
		grown := g.grower.Observe(ev.Payload.State.Progress, ev.Payload.Intention)
		if len(grown) == 0 {
			return
		}
		if err := g.store.AddElements(ctx, grown...); err != nil {
			log.ErrorErr(log.CatGarden, "Failed to save grown elements", err, "count", len(grown))
			return
		}
		for _, e := range grown {
			g.metrics.ElementGrown(string(e.Kind))
			g.broker.Publish(pubsub.CreatedEvent, e)
			log.Debug(log.CatGarden, "Element grown", "kind", e.Kind, "progress", ev.Payload.State.Progress)
		}
	}
}

// Name implements session.Named.
func (g *Gardener) Name() string { return "garden" }

// OnSessionStarted implements session.Observer.
func (g *Gardener) OnSessionStarted(context.Context, string) {}

// OnSessionCompleted records the session in the store.
func (g *Gardener) OnSessionCompleted(ctx context.Context, c session.Completion) error {
	if err := g.store.RecordSession(ctx, c); err != nil {
		return err
	}
	log.Info(log.CatGarden, "Session recorded", "intention", c.Intention)
	return nil
}

// OnSessionAbandoned implements session.Observer. Elements already grown
// are kept.
func (g *Gardener) OnSessionAbandoned(context.Context) {}

// Close shuts down the element broker.
func (g *Gardener) Close() {
	g.broker.Close()
}
