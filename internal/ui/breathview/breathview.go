// Package breathview renders the breathing guide: a circle that swells on
// the inhale and shrinks on the exhale, the phase instruction, the cycle
// counter and a progress bar.
package breathview

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/ui/styles"
)

const (
	minScale = 0.35
	maxScale = 1.0
)

// Scale is the circle size for s, in [minScale, maxScale]. Inhale grows
// with the phase fraction, exhale shrinks, a hold keeps the size the
// previous phase ended at.
func Scale(s breath.State) float64 {
	f := s.PhaseFraction()
	switch s.Phase {
	case breath.Inhale:
		return minScale + (maxScale-minScale)*f
	case breath.Hold:
		return maxScale
	case breath.Exhale:
		return maxScale - (maxScale-minScale)*f
	case breath.HoldAfter:
		return minScale
	default:
		return maxScale
	}
}

// PhaseColor is the accent used for phase p.
func PhaseColor(p breath.Phase) lipgloss.TerminalColor {
	switch p {
	case breath.Inhale:
		return styles.InhaleColor
	case breath.Hold, breath.HoldAfter:
		return styles.HoldColor
	case breath.Exhale:
		return styles.ExhaleColor
	default:
		return styles.CompleteColor
	}
}

// Instruction reads like "Breathe In • 4s".
func Instruction(s breath.State) string {
	if s.Complete() {
		return breath.Complete.Label()
	}
	return fmt.Sprintf("%s • %ds", s.Phase.Label(), breath.DisplaySeconds(s.Remaining))
}

// CycleLabel reads like "Cycle 2 of 8".
func CycleLabel(s breath.State) string {
	current := min(s.Cycle+1, s.Pattern.Cycles)
	return fmt.Sprintf("Cycle %d of %d", current, s.Pattern.Cycles)
}

// Circle draws a filled disc of the given radius in terminal cells, twice
// as wide as tall so it looks round.
func Circle(radius int, glyph string) string {
	if radius < 1 {
		return glyph
	}
	var rows []string
	r := float64(radius)
	for y := -radius; y <= radius; y++ {
		var b strings.Builder
		for x := -2 * radius; x <= 2*radius; x++ {
			dx := float64(x) / 2
			if math.Hypot(dx, float64(y)) <= r+0.25 {
				b.WriteString(glyph)
			} else {
				b.WriteByte(' ')
			}
		}
		rows = append(rows, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(rows, "\n")
}

// Render draws the whole guide for s in a box width cells wide. maxRadius
// is the circle radius at full scale.
func Render(s breath.State, width, maxRadius int) string {
	accent := PhaseColor(s.Phase)

	radius := int(math.Round(Scale(s) * float64(maxRadius)))
	circle := lipgloss.NewStyle().Foreground(accent).Render(Circle(radius, "●"))
	// Reserve the full-size height so the layout does not jump.
	circle = lipgloss.PlaceVertical(2*maxRadius+1, lipgloss.Center, circle)

	instruction := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(Instruction(s))
	hint := styles.MutedStyle.Render(s.Phase.Hint())
	cycle := styles.SubtitleStyle.Render(CycleLabel(s))
	bar := styles.ProgressBar(s.Progress, max(width-10, 10)) + fmt.Sprintf(" %3.0f%%", s.Progress)

	block := lipgloss.JoinVertical(lipgloss.Center, circle, "", instruction, hint, "", cycle, bar)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
