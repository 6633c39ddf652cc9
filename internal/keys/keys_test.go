package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestBreathing_ToggleIsSpace(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeySpace}
	require.True(t, key.Matches(msg, Breathing.Toggle))
	require.Equal(t, "space", Breathing.Toggle.Help().Key)
}

func TestDefaultKeyMap_Assignments(t *testing.T) {
	k := DefaultKeyMap()
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"zen hub", k.ZenHub, []string{"z"}},
		{"mood diary", k.MoodDiary, []string{"m"}},
		{"leaderboard", k.Leaderboard, []string{"l"}},
		{"quit", k.Quit, []string{"q", "ctrl+c"}},
		{"back", k.Back, []string{"esc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
			require.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestWithoutGamification(t *testing.T) {
	k := DefaultKeyMap().WithoutGamification()
	require.False(t, k.ZenHub.Enabled())
	require.False(t, k.MoodDiary.Enabled())
	require.False(t, k.Leaderboard.Enabled())
	require.True(t, k.Quit.Enabled())

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}
	require.False(t, key.Matches(msg, k.ZenHub))
	require.True(t, key.Matches(msg, DefaultKeyMap().ZenHub), "the default map is unaffected")
}

func TestHelpViews(t *testing.T) {
	k := DefaultKeyMap()
	require.Len(t, k.ShortHelp(), 3)
	require.Len(t, k.FullHelp(), 3)
	require.Len(t, Breathing.ShortHelp(), 2)
	require.Len(t, Breathing.FullHelp()[0], 3)
}

func TestMood_Bindings(t *testing.T) {
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRight}, Mood.Next))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyTab}, Mood.Next))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyLeft}, Mood.Prev))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlS}, Mood.Submit))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, Mood.Close))
}
