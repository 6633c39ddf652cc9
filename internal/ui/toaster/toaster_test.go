package toaster

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShow(t *testing.T) {
	m, cmd := New().Show("Session saved", StyleSuccess, time.Second)

	require.True(t, m.Visible())
	require.Equal(t, "Session saved", m.Message())
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "Session saved")
}

func TestHide(t *testing.T) {
	m, _ := New().Show("x", StyleInfo, time.Second)
	m = m.Hide()

	require.False(t, m.Visible())
	require.Empty(t, m.View())
}

func TestUpdate_DismissesOnlyLatest(t *testing.T) {
	m, _ := New().Show("first", StyleInfo, time.Second)
	stale := DismissMsg{seq: m.seq}
	m, _ = m.Show("second", StyleInfo, time.Second)

	m = m.Update(stale)
	require.True(t, m.Visible(), "an older dismissal must not hide a newer toast")
	require.Equal(t, "second", m.Message())

	m = m.Update(DismissMsg{seq: m.seq})
	require.False(t, m.Visible())
}

func TestUpdate_IgnoresOtherMessages(t *testing.T) {
	m, _ := New().Show("x", StyleInfo, time.Second)
	require.True(t, m.Update("not a dismiss").Visible())
}

func TestView_Styles(t *testing.T) {
	tests := []struct {
		style  Style
		prefix string
	}{
		{StyleSuccess, "✓"},
		{StyleError, "✗"},
		{StyleInfo, "·"},
		{StyleReward, "✦"},
	}
	for _, tt := range tests {
		m, _ := New().Show("msg", tt.style, time.Second)
		require.Contains(t, m.View(), tt.prefix+" msg")
	}
}

func TestOverlay_NotVisibleReturnsBackground(t *testing.T) {
	bg := "line1\nline2"
	require.Equal(t, bg, New().Overlay(bg, 5, 2))
}

func TestOverlay_Positions(t *testing.T) {
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 40)+"\n", 12), "\n")

	m, _ := New().Show("saved", StyleSuccess, time.Second)
	lines := strings.Split(m.Overlay(bg, 40, 12), "\n")
	require.Contains(t, lines[9], "saved", "success toasts sit above the bottom edge")

	m, _ = New().Show("+10 coins", StyleReward, time.Second)
	lines = strings.Split(m.Overlay(bg, 40, 12), "\n")
	require.Contains(t, lines[1], "+10 coins", "reward toasts sit in the top right")
	require.True(t, strings.HasPrefix(lines[1], "....."))
}

func TestImmutableModel(t *testing.T) {
	original := New()
	shown, _ := original.Show("x", StyleSuccess, time.Second)
	require.False(t, original.Visible())
	require.True(t, shown.Visible())
}
