package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/bloom/internal/clock"
	"github.com/zjrosen/bloom/internal/keys"
	"github.com/zjrosen/bloom/internal/mode"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/ui/breathview"
	"github.com/zjrosen/bloom/internal/ui/oasis"
	"github.com/zjrosen/bloom/internal/ui/overlay"
	"github.com/zjrosen/bloom/internal/ui/styles"
)

const (
	guideRadius  = 6
	gardenHeight = 5
	panelWidth   = 64
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var view string
	switch m.screen {
	case mode.ScreenPreparation:
		view = m.preparationView()
	case mode.ScreenBreathing:
		view = m.breathingView()
	case mode.ScreenCompletion:
		view = m.completionView()
	default:
		view = m.welcomeView()
	}
	view = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, view)

	if panel := m.overlayView(); panel != "" {
		view = overlay.Place(overlay.Config{
			Width:    m.width,
			Height:   m.height,
			Position: overlay.Center,
		}, panel, view)
	}
	view = m.toaster.Overlay(view, m.width, m.height)
	return m.zones.Scan(view)
}

func (m Model) welcomeView() string {
	header := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.TitleStyle.Render("bloom"),
		styles.SubtitleStyle.Render("What brings you here today?"),
		"",
	)

	cardWidth := min(max(m.width-8, 20), panelWidth)
	list := m.services.Catalog.List()
	cards := make([]string, len(list))
	for i, in := range list {
		style := styles.CardStyle
		if i == m.cursor {
			style = styles.CardSelectedStyle
		}
		body := fmt.Sprintf("%s  %s\n%s", in.Icon, styles.TitleStyle.Render(in.Title), styles.MutedStyle.Render(in.Subtitle))
		cards[i] = m.zones.Mark(m.intentionZone(i), style.Width(cardWidth).Render(body))
	}

	parts := []string{header, lipgloss.JoinVertical(lipgloss.Left, cards...)}
	if m.services.GardenEnabled() && m.services.Config.UI.ShowGarden {
		parts = append(parts, "", styles.MutedStyle.Render("Your oasis: "+m.oasis.Summary()))
	}
	parts = append(parts, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m Model) preparationView() string {
	in := m.selected
	title := styles.TitleStyle.Render(in.Icon + "  " + in.Title)

	desc := describe(in)
	if m.md != nil {
		if rendered, err := m.md.Render(desc); err == nil {
			desc = rendered
		}
	}

	guide := styles.MutedStyle.Render("Hold space while you breathe in, let go while you breathe out.")
	actions := styles.HelpStyle.Render("enter begin · esc back")

	return lipgloss.JoinVertical(lipgloss.Center, "", title, "", desc, "", guide, "", actions)
}

func (m Model) breathingView() string {
	in := m.selected
	header := styles.SubtitleStyle.Render(in.Icon + "  " + in.Title)

	guide := m.zones.Mark(m.zoneID+"guide", breathview.Render(m.state, min(m.width, panelWidth), guideRadius))

	status := styles.MutedStyle.Render("○ released")
	if m.pressing {
		status = lipgloss.NewStyle().Foreground(styles.InhaleColor).Bold(true).Render("● holding")
	}

	parts := []string{"", header, "", guide, "", status}
	if m.services.GardenEnabled() && m.services.Config.UI.ShowGarden {
		parts = append(parts, "", oasis.Render(m.oasis, min(m.width-4, panelWidth), gardenHeight, m.services.Clock.Now()))
	}
	parts = append(parts, "", m.help.View(keys.Breathing))
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m Model) completionView() string {
	lines := []string{
		"",
		lipgloss.NewStyle().Foreground(styles.CompleteColor).Bold(true).Render("✿ Session complete"),
		"",
	}

	if c := m.completion; c != nil {
		lines = append(lines,
			styles.TitleStyle.Render(m.selected.Title),
			styles.MutedStyle.Render(fmt.Sprintf("%s · %d cycles · %s",
				c.PatternName, c.CyclesCompleted,
				clock.FormatDuration(time.Duration(c.DurationSeconds*float64(time.Second))))),
		)
	}

	if m.services.GardenEnabled() && m.services.Config.UI.ShowGarden {
		lines = append(lines, "",
			oasis.Render(m.oasis, min(m.width-4, panelWidth), gardenHeight, m.services.Clock.Now()),
			styles.MutedStyle.Render(oasis.Legend(m.oasis)),
		)
	}

	actions := "enter continue"
	if m.services.ZenEnabled() {
		actions += " · m mood diary · z zen hub"
	}
	lines = append(lines, "", styles.HelpStyle.Render(actions))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m Model) overlayView() string {
	width := min(m.width-4, panelWidth)
	spin := m.spinner.View()
	switch m.overlay {
	case overlayHub:
		return styles.RenderPanel(m.hub.View(spin), "Zen Hub", width, 0, styles.CoinColor)
	case overlayMood:
		return styles.RenderPanel(m.mood.View(), "Mood Diary", width, 0, styles.OverlayBorderColor)
	case overlayLeaderboard:
		self := ""
		if m.services.Zen != nil {
			self = m.services.Zen.UserID()
		}
		return styles.RenderPanel(m.board.View(spin, self), "Leaderboard", width, 0, styles.OverlayBorderColor)
	}
	return ""
}

// describe is the markdown shown before a session starts.
func describe(in pattern.Intention) string {
	p := in.Pattern
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	b.WriteString("| Breathe In | Hold | Breathe Out | Hold |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s |\n\n",
		styles.FormatSeconds(p.Inhale), styles.FormatSeconds(p.Hold),
		styles.FormatSeconds(p.Exhale), styles.FormatSeconds(p.HoldAfter))
	fmt.Fprintf(&b, "**%d cycles**, about %s.",
		p.Cycles, clock.FormatDuration(time.Duration(p.TotalDuration()*float64(time.Second))))
	return b.String()
}
