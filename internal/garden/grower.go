package garden

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MilestoneStep is the progress percentage between grown elements.
	MilestoneStep = 12.5
	// MaxPerSession caps the elements one session can grow.
	MaxPerSession = 8
)

// Grower turns progress updates into new elements. It is safe for
// concurrent use.
type Grower struct {
	mu    sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
	newID func() string
	last  float64
	grown int
}

// GrowerOption configures a Grower.
type GrowerOption func(*Grower)

// WithNow sets the timestamp source for CreatedAt.
func WithNow(now func() time.Time) GrowerOption {
	return func(g *Grower) { g.now = now }
}

// WithIDs sets the ID generator.
func WithIDs(newID func() string) GrowerOption {
	return func(g *Grower) { g.newID = newID }
}

// NewGrower draws randomness from src. A nil src seeds from the runtime.
func NewGrower(src rand.Source, opts ...GrowerOption) *Grower {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	g := &Grower{
		rng:   rand.New(src),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Observe returns one new element for every milestone crossed since the
// previous call. Progress moving backwards means a new session started.
func (g *Grower) Observe(progress float64, intention string) []Element {
	g.mu.Lock()
	defer g.mu.Unlock()

	if progress < g.last {
		g.last, g.grown = 0, 0
	}
	from, to := milestone(g.last), milestone(progress)
	g.last = progress

	var out []Element
	for m := from + 1; m <= to && g.grown < MaxPerSession; m++ {
		out = append(out, g.spawn(intention))
		g.grown++
	}
	return out
}

// Reset forgets progress so the next session grows from zero.
func (g *Grower) Reset() {
	g.mu.Lock()
	g.last, g.grown = 0, 0
	g.mu.Unlock()
}

// Grown returns how many elements the current session has produced.
func (g *Grower) Grown() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.grown
}

// Spawn creates one random element regardless of progress.
func (g *Grower) Spawn(intention string) Element {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spawn(intention)
}

func (g *Grower) spawn(intention string) Element {
	sp := g.pick()
	return Element{
		ID:        g.newID(),
		Kind:      sp.Kind,
		X:         10 + g.rng.Float64()*80,
		Y:         30 + g.rng.Float64()*60,
		Size:      0.5 + g.rng.Float64()*0.5,
		Rotation:  g.rng.Float64() * 360,
		Color:     sp.Colors[g.rng.IntN(len(sp.Colors))],
		GrowTime:  sp.GrowTime,
		Intention: intention,
		CreatedAt: g.now(),
	}
}

func (g *Grower) pick() Species {
	total := 0
	for _, s := range species {
		total += s.Weight
	}
	r := g.rng.IntN(total)
	for _, s := range species {
		if r < s.Weight {
			return s
		}
		r -= s.Weight
	}
	return species[0]
}

func milestone(progress float64) int {
	if progress <= 0 {
		return 0
	}
	m := int(math.Floor(progress / MilestoneStep))
	return min(m, MaxPerSession)
}
