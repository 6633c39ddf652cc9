// Package pattern holds the breathing pattern catalog: the fixed mapping from
// intention keys to timing parameters, plus an optional user overlay file.
package pattern

import "math"

// Pattern is an immutable set of phase durations (seconds) and a cycle count.
type Pattern struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Inhale      float64 `yaml:"inhale"`
	Hold        float64 `yaml:"hold"`
	Exhale      float64 `yaml:"exhale"`
	HoldAfter   float64 `yaml:"hold_after"`
	Cycles      int     `yaml:"cycles"`
	Color       string  `yaml:"color"`
}

// CycleDuration is the length of one full cycle in seconds.
func (p Pattern) CycleDuration() float64 {
	return p.Inhale + p.Hold + p.Exhale + p.HoldAfter
}

// TotalDuration is CycleDuration times Cycles.
func (p Pattern) TotalDuration() float64 {
	return float64(p.Cycles) * p.CycleDuration()
}

// Validate checks the duration invariants. key is only used for the message.
func (p Pattern) Validate(key string) error {
	durations := []struct {
		field string
		value float64
	}{
		{"inhale", p.Inhale},
		{"hold", p.Hold},
		{"exhale", p.Exhale},
		{"hold_after", p.HoldAfter},
	}
	for _, d := range durations {
		if math.IsNaN(d.value) || math.IsInf(d.value, 0) {
			return &ConfigurationError{Key: key, Field: d.field, Reason: "must be a finite number"}
		}
		if d.value < 0 {
			return &ConfigurationError{Key: key, Field: d.field, Reason: "must not be negative"}
		}
	}
	if p.Cycles < 1 {
		return &ConfigurationError{Key: key, Field: "cycles", Reason: "must be at least 1"}
	}
	if p.Inhale+p.Exhale <= 0 {
		return &ConfigurationError{Key: key, Field: "inhale+exhale", Reason: "must be greater than zero"}
	}
	return nil
}

// New validates and returns a pattern.
func New(name string, inhale, hold, exhale, holdAfter float64, cycles int) (Pattern, error) {
	p := Pattern{
		Name:      name,
		Inhale:    inhale,
		Hold:      hold,
		Exhale:    exhale,
		HoldAfter: holdAfter,
		Cycles:    cycles,
	}
	if err := p.Validate(name); err != nil {
		return Pattern{}, err
	}
	return p, nil
}
