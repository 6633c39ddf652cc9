package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "known flag defaults to on",
			registry: New(nil),
			flag:     FlagGarden,
			expected: true,
		},
		{
			name:     "known flag turned off",
			registry: New(map[string]bool{FlagSoundCues: false}),
			flag:     FlagSoundCues,
			expected: false,
		},
		{
			name:     "unknown flag returns false",
			registry: New(map[string]bool{}),
			flag:     "time-travel",
			expected: false,
		},
		{
			name:     "unknown configured flag is kept",
			registry: New(map[string]bool{"time-travel": true}),
			flag:     "time-travel",
			expected: true,
		},
		{
			name:     "nil registry returns false",
			registry: nil,
			flag:     FlagGamification,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_All_ReturnsCopy(t *testing.T) {
	r := New(map[string]bool{FlagRemoteGuide: false})

	all := r.All()
	require.Len(t, all, len(Defaults()))
	require.False(t, all[FlagRemoteGuide])

	all[FlagRemoteGuide] = true
	require.False(t, r.Enabled(FlagRemoteGuide), "mutating the copy must not leak")

	var nilReg *Registry
	require.Empty(t, nilReg.All())
}

func TestRegistry_EnabledNames(t *testing.T) {
	r := New(map[string]bool{FlagGarden: false, FlagSoundCues: false})
	require.Equal(t, []string{FlagGamification, FlagRemoteGuide}, r.EnabledNames())
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	in := map[string]bool{FlagGarden: false}
	r := New(in)
	in[FlagGarden] = true
	require.False(t, r.Enabled(FlagGarden))
}
