// Package guide serves a remote breathing guide over WebSocket. Every
// connection drives its own session controller.
package guide

import (
	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
)

// Client message types.
const (
	MsgStart   = "start"
	MsgPress   = "press"
	MsgRelease = "release"
	MsgReset   = "reset"
)

// Server message types.
const (
	MsgSnapshot  = "snapshot"
	MsgStarted   = "started"
	MsgCompleted = "completed"
	MsgAbandoned = "abandoned"
	MsgError     = "error"
)

// ClientMessage is sent by the browser or terminal client.
type ClientMessage struct {
	Type      string `json:"type"`
	Intention string `json:"intention,omitempty"`
}

// ServerMessage is pushed to the client.
type ServerMessage struct {
	Type       string              `json:"type"`
	Intention  string              `json:"intention,omitempty"`
	State      *StateView          `json:"state,omitempty"`
	Completion *session.Completion `json:"completion,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// StateView is the wire form of a breath.State.
type StateView struct {
	Pattern        string  `json:"pattern"`
	Phase          string  `json:"phase"`
	Label          string  `json:"label"`
	Cycle          int     `json:"cycle"`
	Cycles         int     `json:"cycles"`
	Remaining      float64 `json:"remaining"`
	DisplaySeconds int     `json:"display_seconds"`
	PhaseFraction  float64 `json:"phase_fraction"`
	Progress       float64 `json:"progress"`
	Pressing       bool    `json:"pressing"`
	Active         bool    `json:"active"`
}

// View converts s for the wire.
func View(s breath.State) *StateView {
	return &StateView{
		Pattern:        s.Pattern.Name,
		Phase:          s.Phase.String(),
		Label:          s.Phase.Label(),
		Cycle:          s.Cycle,
		Cycles:         s.Pattern.Cycles,
		Remaining:      s.Remaining,
		DisplaySeconds: breath.DisplaySeconds(s.Remaining),
		PhaseFraction:  s.PhaseFraction(),
		Progress:       s.Progress,
		Pressing:       s.Pressing,
		Active:         s.Active,
	}
}

func fromEvent(eventType pubsub.EventType, ev session.Event) ServerMessage {
	msg := ServerMessage{Intention: ev.Intention, State: View(ev.State)}
	switch eventType {
	case session.EventStarted:
		msg.Type = MsgStarted
	case session.EventCompleted:
		msg.Type = MsgCompleted
		msg.Completion = ev.Completion
	case session.EventAbandoned:
		msg.Type = MsgAbandoned
	default:
		msg.Type = MsgSnapshot
	}
	return msg
}
