// Package garden grows the oasis: every 12.5% of breathing progress adds a
// randomly chosen plant, creature or crystal, and completed sessions are
// tallied. Elements persist across sessions.
package garden

import (
	"fmt"
	"time"
)

// Kind is an element type.
type Kind string

const (
	Grass     Kind = "grass"
	Flower    Kind = "flower"
	Tree      Kind = "tree"
	Butterfly Kind = "butterfly"
	Crystal   Kind = "crystal"
	Mushroom  Kind = "mushroom"
)

// Species describes how a kind is drawn and how often it appears.
type Species struct {
	Kind     Kind
	Weight   int
	GrowTime time.Duration
	Colors   []string
	Glyph    string
}

// Species table; weights sum to 100.
var species = []Species{
	{Grass, 40, 1500 * time.Millisecond, []string{"#4ade80", "#22c55e", "#16a34a"}, "ψ"},
	{Flower, 25, 2500 * time.Millisecond, []string{"#f472b6", "#ec4899", "#db2777", "#fbbf24", "#f59e0b"}, "✿"},
	{Tree, 15, 4 * time.Second, []string{"#22c55e", "#16a34a", "#15803d"}, "♣"},
	{Butterfly, 10, time.Second, []string{"#f472b6", "#a855f7", "#3b82f6"}, "ж"},
	{Crystal, 5, 3 * time.Second, []string{"#06b6d4", "#0891b2", "#0e7490"}, "◆"},
	{Mushroom, 5, 2 * time.Second, []string{"#f87171", "#ef4444", "#dc2626"}, "♠"},
}

// AllSpecies returns the species table in weight order.
func AllSpecies() []Species {
	out := make([]Species, len(species))
	copy(out, species)
	return out
}

// Lookup returns the species for k.
func Lookup(k Kind) (Species, bool) {
	for _, s := range species {
		if s.Kind == k {
			return s, true
		}
	}
	return Species{}, false
}

// Element is one grown thing. X and Y are percentages of the canvas.
type Element struct {
	ID        string
	Kind      Kind
	X         float64
	Y         float64
	Size      float64
	Rotation  float64
	Color     string
	GrowTime  time.Duration
	Intention string
	CreatedAt time.Time
}

// Maturity is how grown the element is at now, in [0,1].
func (e Element) Maturity(now time.Time) float64 {
	if e.GrowTime <= 0 {
		return 1
	}
	m := float64(now.Sub(e.CreatedAt)) / float64(e.GrowTime)
	switch {
	case m < 0:
		return 0
	case m > 1:
		return 1
	default:
		return m
	}
}

// Glyph is the character drawn for the element.
func (e Element) Glyph() string {
	if s, ok := Lookup(e.Kind); ok {
		return s.Glyph
	}
	return "·"
}

// Oasis is the persisted garden.
type Oasis struct {
	Elements      []Element
	TotalSessions int
	LastSessionAt time.Time
}

// Summary reads like "12 living elements from 3 sessions".
func (o Oasis) Summary() string {
	return fmt.Sprintf("%d living %s from %d %s",
		len(o.Elements), plural(len(o.Elements), "element", "elements"),
		o.TotalSessions, plural(o.TotalSessions, "session", "sessions"))
}

// CountByKind tallies the elements.
func (o Oasis) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range o.Elements {
		counts[e.Kind]++
	}
	return counts
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
