package pattern

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Valid(t *testing.T) {
	p, err := New("Box", 4, 4, 4, 4, 8)
	require.NoError(t, err)
	require.Equal(t, 16.0, p.CycleDuration())
	require.Equal(t, 128.0, p.TotalDuration())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		p     Pattern
		field string
	}{
		{"negative hold", Pattern{Inhale: 4, Hold: -1, Exhale: 4, Cycles: 1}, "hold"},
		{"negative inhale", Pattern{Inhale: -4, Exhale: 4, Cycles: 1}, "inhale"},
		{"zero cycles", Pattern{Inhale: 4, Exhale: 4, Cycles: 0}, "cycles"},
		{"only holds", Pattern{Hold: 4, HoldAfter: 4, Cycles: 3}, "inhale+exhale"},
		{"nan exhale", Pattern{Inhale: 4, Exhale: math.NaN(), Cycles: 1}, "exhale"},
		{"infinite hold after", Pattern{Inhale: 4, Exhale: 4, HoldAfter: math.Inf(1), Cycles: 1}, "hold_after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate("custom")
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			require.Equal(t, tt.field, cfgErr.Field)
			require.Equal(t, "custom", cfgErr.Key)
			require.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestValidate_ExhaleOnlyIsAllowed(t *testing.T) {
	require.NoError(t, Pattern{Exhale: 6, Cycles: 1}.Validate("x"))
}
