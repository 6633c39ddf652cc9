// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#2F3E46", Dark: "#E8EDDF"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#52796F", Dark: "#B8C4BB"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#9AA5A0", Dark: "#6B7570"}
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#5C6B66", Dark: "#9DA8A3"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#CAD2C5", Dark: "#4A5550"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#E0A400", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#D64545", Dark: "#FF8787"}

	// Breathing phases
	InhaleColor   = lipgloss.AdaptiveColor{Light: "#3A7CA5", Dark: "#7FC8F8"}
	HoldColor     = lipgloss.AdaptiveColor{Light: "#7B5EA7", Dark: "#C3A6FF"}
	ExhaleColor   = lipgloss.AdaptiveColor{Light: "#2D9D78", Dark: "#84DCC6"}
	CompleteColor = lipgloss.AdaptiveColor{Light: "#B08900", Dark: "#FFD166"}

	// Garden
	SoilColor = lipgloss.AdaptiveColor{Light: "#C8B79E", Dark: "#3D3427"}

	// Zen
	CoinColor = lipgloss.AdaptiveColor{Light: "#B08900", Dark: "#FFD166"}

	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#2F3E46", Dark: "#FFFFFF"}
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#2F3E46", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#84A98C", Dark: "#84A98C"}

	// Toast notification colors
	ToastBorderSuccessColor = StatusSuccessColor
	ToastBorderErrorColor   = StatusErrorColor
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#3A7CA5", Dark: "#54A0FF"}
	ToastBorderRewardColor  = CoinColor

	TitleStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Italic(true)

	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	CoinStyle = lipgloss.NewStyle().Foreground(CoinColor).Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)

	// Intention cards on the welcome screen
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(0, 2)

	CardSelectedStyle = CardStyle.
				BorderForeground(InhaleColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor).
			Padding(0, 1)
)
