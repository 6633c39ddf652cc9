// Package toaster provides a notification toast overlay component.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/bloom/internal/ui/overlay"
	"github.com/zjrosen/bloom/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

// Style determines the visual appearance of the toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	// StyleReward announces zen coins and unlocked achievements. It is
	// drawn in the top right corner instead of the bottom.
	StyleReward
)

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
	seq     int
}

// New creates a new toaster model.
func New() Model {
	return Model{}
}

// Show displays a toast and returns the command that dismisses it after d.
// A later Show supersedes the pending dismissal of an earlier one.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.seq++
	m.message = message
	m.style = style
	m.visible = true
	return m, scheduleDismiss(m.seq, d)
}

// Update hides the toast when its own DismissMsg arrives.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.seq == m.seq {
		return m.Hide()
	}
	return m
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text currently shown.
func (m Model) Message() string {
	return m.message
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var content string
	switch m.style {
	case StyleError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		content = "✗ " + m.message
	case StyleInfo:
		style = style.BorderForeground(styles.ToastBorderInfoColor)
		content = "· " + m.message
	case StyleReward:
		style = style.BorderForeground(styles.ToastBorderRewardColor)
		content = "✦ " + m.message
	default:
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		content = "✓ " + m.message
	}

	return style.Render(content)
}

// Overlay renders the toast on top of a background view.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}

	cfg := overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}
	if m.style == StyleReward {
		cfg.Position = overlay.TopRight
		cfg.PadX = 2
	}
	return overlay.Place(cfg, m.View(), bg)
}

// DismissMsg signals that a toast should be dismissed.
type DismissMsg struct {
	seq int
}

func scheduleDismiss(seq int, d time.Duration) tea.Cmd {
	if d <= 0 {
		d = DefaultDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{seq: seq}
	})
}
