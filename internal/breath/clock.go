package breath

import (
	"math"

	"github.com/zjrosen/bloom/internal/pattern"
)

// epsilon absorbs float accumulation so that forty 0.1s ticks finish a 4s
// phase on the fortieth tick.
const epsilon = 1e-9

// State is a snapshot of a breathing session. It is a value type; Tick
// returns a new State and never mutates its argument.
type State struct {
	Pattern   pattern.Pattern
	Cycle     int
	Phase     Phase
	Remaining float64
	Elapsed   float64
	Active    bool
	Progress  float64
	Pressing  bool
}

// TotalDuration is the gated time needed to finish every cycle of p.
func TotalDuration(p pattern.Pattern) float64 {
	return p.TotalDuration()
}

// NewState returns the initial state of a session running p.
func NewState(p pattern.Pattern) State {
	return State{
		Pattern:   p,
		Phase:     Inhale,
		Remaining: p.Inhale,
		Active:    true,
	}
}

// Complete reports whether the session has run all of its cycles.
func (s State) Complete() bool {
	return s.Phase == Complete
}

// PhaseFraction is how far through the current phase the session is, in
// [0,1]. Zero-length phases report 1.
func (s State) PhaseFraction() float64 {
	d := Duration(s.Pattern, s.Phase)
	if d <= 0 {
		return 1
	}
	return clamp((d-s.Remaining)/d, 0, 1)
}

// Tick advances s by delta seconds. pressing is the latched input sampled
// for this tick. Inactive and completed states are returned unchanged.
// Tick never carries surplus time into the next phase, and Progress stays
// below 100 until the terminal tick.
func Tick(s State, delta float64, pressing bool) State {
	if !s.Active || s.Phase == Complete {
		return s
	}
	if math.IsNaN(delta) || delta < 0 {
		delta = 0
	}

	s.Pressing = pressing

	if shouldProgress(s.Phase, pressing) {
		// Surplus past the phase boundary is dropped from Elapsed too, so
		// Elapsed reaches the total only on the terminal tick.
		s.Elapsed += math.Min(delta, math.Max(s.Remaining, 0))
		s.Remaining -= delta
	}

	total := TotalDuration(s.Pattern)
	if s.Elapsed > total {
		s.Elapsed = total
	}
	s.Progress = progress(s.Elapsed, total)

	if s.Remaining <= epsilon {
		s = advance(s)
	}
	return s
}

func advance(s State) State {
	following, wrapped := next(s.Pattern, s.Phase)
	if wrapped {
		s.Cycle++
		if s.Cycle >= s.Pattern.Cycles {
			s.Cycle = s.Pattern.Cycles
			s.Phase = Complete
			s.Active = false
			s.Remaining = 0
			s.Progress = 100
			return s
		}
	}
	s.Phase = following
	s.Remaining = Duration(s.Pattern, following)
	return s
}

func progress(elapsed, total float64) float64 {
	if total <= 0 {
		return 100
	}
	return math.Min(100, elapsed/total*100)
}

// DisplaySeconds rounds remaining time up to whole seconds for display.
func DisplaySeconds(remaining float64) int {
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining - epsilon))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
