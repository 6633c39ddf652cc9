// Package flags provides feature flags for optional parts of bloom.
// Flags are read-only after initialization and unknown flags are off.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/bloom/internal/log"
)

const (
	// FlagGamification enables the zen client: coins, achievements, the
	// mood diary and the leaderboard overlays.
	FlagGamification = "gamification"

	// FlagGarden controls whether completed sessions grow the oasis.
	FlagGarden = "garden"

	// FlagSoundCues enables terminal bell cues on phase changes and completion.
	FlagSoundCues = "sound-cues"

	// FlagRemoteGuide mounts the WebSocket breathing guide on the zen server.
	FlagRemoteGuide = "remote-guide"
)

// Defaults returns every known flag with its default value.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagGamification: true,
		FlagGarden:       true,
		FlagSoundCues:    true,
		FlagRemoteGuide:  true,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from the config map. Known flags missing from
// the map keep their default; unknown names are kept but logged.
func New(configured map[string]bool) *Registry {
	merged := Defaults()
	known := Defaults()
	for name, on := range configured {
		if _, ok := known[name]; !ok {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
		merged[name] = on
	}
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on. Unknown flags and a nil
// registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

// EnabledNames lists the flags that are on, sorted.
func (r *Registry) EnabledNames() []string {
	var names []string
	for name, on := range r.All() {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
