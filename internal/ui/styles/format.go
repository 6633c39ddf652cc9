package styles

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// TruncateString truncates s to maxWidth display cells, ending in "..."
// when anything was cut. It never splits a grapheme cluster, so emoji
// sequences like "🧘‍♀️" survive intact.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if uniseg.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	budget := maxWidth - 3
	var b strings.Builder
	width := 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		w := uniseg.StringWidth(cluster)
		if width+w > budget {
			break
		}
		b.WriteString(cluster)
		width += w
		s = rest
		state = newState
	}
	return b.String() + "..."
}

// FormatCoins renders a zen coin amount, e.g. "🪙 120".
func FormatCoins(n int) string {
	return fmt.Sprintf("\U0001FA99 %d", n)
}

// FormatSeconds renders a phase length: whole numbers without decimals,
// fractional lengths with one, e.g. "4s", "5.5s".
func FormatSeconds(s float64) string {
	if s == float64(int(s)) {
		return fmt.Sprintf("%ds", int(s))
	}
	return fmt.Sprintf("%.1fs", s)
}

// ProgressBar renders a width-cell bar filled to percent (0 to 100).
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
