package markdown

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestRender_Styles(t *testing.T) {
	for _, style := range []string{"dark", "light", ""} {
		t.Run(style, func(t *testing.T) {
			r, err := New(40, style)
			require.NoError(t, err)
			require.Equal(t, 40, r.Width())

			out, err := r.Render("## Box Breathing\n\nInhale **4s**, hold 4s.")
			require.NoError(t, err)
			plain := ansi.Strip(out)
			require.Contains(t, plain, "Box Breathing")
			require.Contains(t, plain, "4s")
			require.NotRegexp(t, `\n$`, out)
		})
	}
}
