package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderPanel renders content in a rounded box with the title set into the
// top border: ╭─ Zen Hub ─────╮. Overlays use it for the hub, the mood diary
// and the leaderboard. A height of 0 fits the content.
func RenderPanel(content, title string, width, height int, accent lipgloss.TerminalColor) string {
	borderStyle := lipgloss.NewStyle().Foreground(accent)
	titleStyle := lipgloss.NewStyle().Foreground(OverlayTitleColor).Bold(true)

	innerWidth := max(width-2, 1)

	body := lipgloss.NewStyle().Width(innerWidth).Render(content)
	lines := strings.Split(body, "\n")
	if height > 0 {
		contentHeight := max(height-2, 1)
		for len(lines) < contentHeight {
			lines = append(lines, "")
		}
		lines = lines[:contentHeight]
	}

	var b strings.Builder
	b.WriteString(topBorder(title, innerWidth, borderStyle, titleStyle))
	for _, line := range lines {
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

// topBorder needs at least four inner cells ("─ " and " ─") to fit a title;
// narrower borders drop it.
func topBorder(title string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	plain := borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	if title == "" || innerWidth < 5 {
		return plain
	}

	display := TruncateString(title, innerWidth-4)
	rest := max(innerWidth-3-lipgloss.Width(display), 0)

	return borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		titleStyle.Render(display) +
		borderStyle.Render(" "+strings.Repeat(borderHorizontal, rest)+borderTopRight)
}
