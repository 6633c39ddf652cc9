// Package pubsub provides a generic publish/subscribe event system used to
// fan session snapshots, grown garden elements, rewards and log lines out to
// the TUI and WebSocket clients.
package pubsub

import "time"

// EventType names what happened. Packages declare their own values
// (session.EventTick, session.EventCompleted, ...) next to CreatedEvent.
type EventType string

// CreatedEvent marks a payload that did not exist before: a grown element,
// a reward, a log line.
const CreatedEvent EventType = "created"

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}
