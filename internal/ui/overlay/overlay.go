// Package overlay draws modal content over an already rendered screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay content.
type Position int

const (
	Center Position = iota
	Top
	Bottom
	// TopRight is used for achievement toasts so they do not hide the guide.
	TopRight
)

// Config controls overlay rendering behavior.
type Config struct {
	Width    int // viewport width
	Height   int // viewport height
	Position Position
	PadX     int // distance from the right edge (TopRight only)
	PadY     int // distance from the top or bottom edge
}

// Place renders fg on top of bg. Cutting is ANSI aware, so styling on both
// sides of the overlay survives.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	x, y := origin(cfg, lipgloss.Width(fg), len(fgLines))

	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of bg starting at column x with fg.
func splice(bg, fg string, x int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}

	var right string
	end := x + ansi.StringWidth(fg)
	if end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + fg + right
}

func origin(cfg Config, fgWidth, fgHeight int) (x, y int) {
	x = (cfg.Width - fgWidth) / 2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - fgHeight - cfg.PadY
	case TopRight:
		x = cfg.Width - fgWidth - cfg.PadX
		y = cfg.PadY
	default:
		y = (cfg.Height - fgHeight) / 2
	}
	return max(x, 0), max(y, 0)
}
