// Package breath implements the phase clock: a pure state machine that
// advances a breathing session by a time delta, gated by the user's press.
package breath

import "github.com/zjrosen/bloom/internal/pattern"

// Phase is one step of a breathing cycle.
type Phase int

const (
	Inhale Phase = iota
	Hold
	Exhale
	HoldAfter
	// Complete is reported once the last cycle has finished.
	Complete
)

func (p Phase) String() string {
	switch p {
	case Inhale:
		return "inhale"
	case Hold:
		return "hold"
	case Exhale:
		return "exhale"
	case HoldAfter:
		return "hold_after"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Label is the instruction shown to the user.
func (p Phase) Label() string {
	switch p {
	case Inhale:
		return "Breathe In"
	case Hold, HoldAfter:
		return "Hold"
	case Exhale:
		return "Breathe Out"
	case Complete:
		return "Complete"
	default:
		return ""
	}
}

// Hint tells the user what to do with the press control.
func (p Phase) Hint() string {
	switch p {
	case Inhale:
		return "Press and hold while breathing in"
	case Hold, HoldAfter:
		return "Keep still"
	case Exhale:
		return "Release while breathing out"
	default:
		return ""
	}
}

// Duration returns the configured length of phase p in seconds.
func Duration(pat pattern.Pattern, p Phase) float64 {
	switch p {
	case Inhale:
		return pat.Inhale
	case Hold:
		return pat.Hold
	case Exhale:
		return pat.Exhale
	case HoldAfter:
		return pat.HoldAfter
	default:
		return 0
	}
}

// Phases is the active phase sequence of one cycle; zero-length holds are
// left out.
func Phases(pat pattern.Pattern) []Phase {
	phases := []Phase{Inhale}
	if pat.Hold > 0 {
		phases = append(phases, Hold)
	}
	phases = append(phases, Exhale)
	if pat.HoldAfter > 0 {
		phases = append(phases, HoldAfter)
	}
	return phases
}

// next returns the phase following p and whether the cycle wrapped.
func next(pat pattern.Pattern, p Phase) (Phase, bool) {
	switch p {
	case Inhale:
		if pat.Hold > 0 {
			return Hold, false
		}
		return Exhale, false
	case Hold:
		return Exhale, false
	case Exhale:
		if pat.HoldAfter > 0 {
			return HoldAfter, false
		}
		return Inhale, true
	default:
		return Inhale, true
	}
}

// shouldProgress is the press gate: inhale advances only while pressed,
// exhale only while released, holds always.
func shouldProgress(p Phase, pressing bool) bool {
	switch p {
	case Inhale:
		return pressing
	case Hold, HoldAfter:
		return true
	case Exhale:
		return !pressing
	default:
		return false
	}
}
