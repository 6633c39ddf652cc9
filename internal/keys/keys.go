// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding

	// Overlays
	ZenHub      key.Binding
	MoodDiary   key.Binding
	Leaderboard key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// BreathingKeyMap holds the bindings active while a session runs.
type BreathingKeyMap struct {
	// Terminals report no key-up, so space toggles the pressing latch.
	Toggle  key.Binding
	Abandon key.Binding
	Help    key.Binding
}

// MoodKeyMap holds the mood diary overlay bindings.
type MoodKeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Submit key.Binding
	Close  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous intention"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next intention"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		ZenHub: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zen hub"),
		),
		MoodDiary: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mood diary"),
		),
		Leaderboard: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "leaderboard"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.ZenHub, k.MoodDiary, k.Leaderboard},
		{k.Help, k.Quit},
	}
}

// WithoutGamification disables the overlay bindings that need a zen server.
func (k KeyMap) WithoutGamification() KeyMap {
	k.ZenHub.SetEnabled(false)
	k.MoodDiary.SetEnabled(false)
	k.Leaderboard.SetEnabled(false)
	return k
}

// Breathing is the keymap of the breathing screen.
var Breathing = BreathingKeyMap{
	Toggle: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "hold / let go"),
	),
	Abandon: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "end session"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
}

// ShortHelp returns keybindings for the short help view.
func (k BreathingKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Abandon}
}

// FullHelp returns keybindings for the full help view.
func (k BreathingKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Toggle, k.Abandon, k.Help}}
}

// Mood is the keymap of the mood diary overlay.
var Mood = MoodKeyMap{
	Prev: key.NewBinding(
		key.WithKeys("left", "shift+tab"),
		key.WithHelp("←", "previous mood"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "tab"),
		key.WithHelp("→", "next mood"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save entry"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
}
