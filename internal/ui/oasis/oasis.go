// Package oasis draws the garden as a field of glyphs.
package oasis

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/bloom/internal/garden"
	"github.com/zjrosen/bloom/internal/ui/styles"
)

// Seedling glyphs by maturity; a fully grown element uses its species glyph.
const (
	seedGlyph   = "·"
	sproutGlyph = "˒"
)

type cell struct {
	glyph string
	color string
}

// Render draws o on a width×height canvas as it looks at now. Elements are
// placed by their percentage coordinates; later elements win a contested
// cell. A one-line caption is appended below the canvas.
func Render(o garden.Oasis, width, height int, now time.Time) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	elements := make([]garden.Element, len(o.Elements))
	copy(elements, o.Elements)
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].CreatedAt.Before(elements[j].CreatedAt)
	})

	for _, e := range elements {
		glyph := glyphFor(e, now)
		col := clampIndex(int(e.X/100*float64(width)), width-runewidth.StringWidth(glyph)+1)
		row := clampIndex(int(e.Y/100*float64(height)), height)
		grid[row][col] = cell{glyph: glyph, color: e.Color}
	}

	soil := lipgloss.NewStyle().Foreground(styles.SoilColor)
	lines := make([]string, 0, height+1)
	for _, row := range grid {
		var b strings.Builder
		for x := 0; x < width; x++ {
			c := row[x]
			if c.glyph == "" {
				b.WriteString(soil.Render(" "))
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Render(c.glyph))
			// Wide glyphs use the next cell too.
			x += runewidth.StringWidth(c.glyph) - 1
		}
		lines = append(lines, b.String())
	}

	lines = append(lines, styles.MutedStyle.Render(wordwrap.String(o.Summary(), width)))
	return strings.Join(lines, "\n")
}

// Legend lists the element kinds present, e.g. "ψ grass 4  ✿ flower 2".
func Legend(o garden.Oasis) string {
	counts := o.CountByKind()
	var parts []string
	for _, s := range garden.AllSpecies() {
		if n := counts[s.Kind]; n > 0 {
			parts = append(parts, s.Glyph+" "+string(s.Kind)+" "+strconv.Itoa(n))
		}
	}
	return strings.Join(parts, "  ")
}

func glyphFor(e garden.Element, now time.Time) string {
	switch m := e.Maturity(now); {
	case m < 0.34:
		return seedGlyph
	case m < 0.67:
		return sproutGlyph
	default:
		return e.Glyph()
	}
}

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
