package pattern

import (
	"slices"
	"sync"
)

// Intention is what the user picks on the welcome screen.
type Intention struct {
	Key      string  `yaml:"key"`
	Title    string  `yaml:"title"`
	Subtitle string  `yaml:"subtitle"`
	Icon     string  `yaml:"icon"`
	Pattern  Pattern `yaml:"pattern"`
}

// Built-in intention keys.
const (
	CalmBeforeEvent = "calm-before-event"
	SharpenFocus    = "sharpen-focus"
	SootheMind      = "soothe-mind"
	DriftToSleep    = "drift-to-sleep"
	JustBreathe     = "just-breathe"
)

var builtins = []Intention{
	{
		Key:      CalmBeforeEvent,
		Title:    "Calm Before an Event",
		Subtitle: "Presentation, interview, or important moment",
		Icon:     "🎯",
		Pattern: Pattern{
			Name:        "Box Breathing",
			Description: "Perfect for centering before important moments",
			Inhale:      4, Hold: 4, Exhale: 4, HoldAfter: 4, Cycles: 8,
			Color: "#3B82F6",
		},
	},
	{
		Key:      SharpenFocus,
		Title:    "Sharpen My Focus",
		Subtitle: "Work, study, or creative tasks",
		Icon:     "🧠",
		Pattern: Pattern{
			Name:        "4-6 Breathing",
			Description: "Enhance mental clarity and concentration",
			Inhale:      4, Hold: 0, Exhale: 6, HoldAfter: 0, Cycles: 10,
			Color: "#22C55E",
		},
	},
	{
		Key:      SootheMind,
		Title:    "Soothe My Mind",
		Subtitle: "Feeling anxious, down, or overwhelmed",
		Icon:     "🌸",
		Pattern: Pattern{
			Name:        "4-7-8 Breathing",
			Description: "Deep relaxation for troubled minds",
			Inhale:      4, Hold: 7, Exhale: 8, HoldAfter: 0, Cycles: 6,
			Color: "#A855F7",
		},
	},
	{
		Key:      DriftToSleep,
		Title:    "Drift to Sleep",
		Subtitle: "Preparing for restful slumber",
		Icon:     "🌙",
		Pattern: Pattern{
			Name:        "Extended Exhale",
			Description: "Prepare your body for restful sleep",
			Inhale:      4, Hold: 0, Exhale: 8, HoldAfter: 0, Cycles: 8,
			Color: "#6366F1",
		},
	},
	{
		Key:      JustBreathe,
		Title:    "Just Breathe",
		Subtitle: "A moment of peace and balance",
		Icon:     "🍃",
		Pattern: Pattern{
			Name:        "Coherence Breathing",
			Description: "Find your natural rhythm and balance",
			Inhale:      5.5, Hold: 0, Exhale: 5.5, HoldAfter: 0, Cycles: 10,
			Color: "#14B8A6",
		},
	},
}

// Catalog maps intention keys to patterns. It is safe for concurrent use;
// Replace swaps the whole table atomically so the watcher can reload it.
type Catalog struct {
	mu         sync.RWMutex
	intentions []Intention
	index      map[string]int
}

// Default returns a catalog holding the five built-in intentions.
func Default() *Catalog {
	c, err := NewCatalog(builtins...)
	if err != nil {
		panic(err) // built-ins are constants
	}
	return c
}

// NewCatalog validates every intention. Later entries with a duplicate key
// replace earlier ones in place.
func NewCatalog(intentions ...Intention) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Replace(intentions); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the pattern for key.
func (c *Catalog) Get(key string) (Pattern, error) {
	in, err := c.Intention(key)
	if err != nil {
		return Pattern{}, err
	}
	return in.Pattern, nil
}

// Intention returns the full intention for key.
func (c *Catalog) Intention(key string) (Intention, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[key]
	if !ok {
		return Intention{}, &UnknownIntentionError{Key: key}
	}
	return c.intentions[i], nil
}

// List returns the intentions in display order.
func (c *Catalog) List() []Intention {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.intentions)
}

// Keys returns the intention keys in display order.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, len(c.intentions))
	for i, in := range c.intentions {
		keys[i] = in.Key
	}
	return keys
}

// Len returns the number of intentions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.intentions)
}

// Replace validates intentions and swaps them in. On error the catalog is
// left untouched.
func (c *Catalog) Replace(intentions []Intention) error {
	list := make([]Intention, 0, len(intentions))
	index := make(map[string]int, len(intentions))
	for _, in := range intentions {
		if in.Key == "" {
			return &ConfigurationError{Field: "key", Reason: "must not be empty"}
		}
		if err := in.Pattern.Validate(in.Key); err != nil {
			return err
		}
		if i, ok := index[in.Key]; ok {
			list[i] = in
			continue
		}
		index[in.Key] = len(list)
		list = append(list, in)
	}

	c.mu.Lock()
	c.intentions = list
	c.index = index
	c.mu.Unlock()
	return nil
}

// Builtins returns a copy of the built-in intentions.
func Builtins() []Intention {
	return slices.Clone(builtins)
}
