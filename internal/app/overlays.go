package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/bloom/internal/keys"
	"github.com/zjrosen/bloom/internal/ui/styles"
	"github.com/zjrosen/bloom/internal/zen"
)

// hubModel is the zen hub overlay: balance plus unlocked achievements.
type hubModel struct {
	loading  bool
	err      error
	balance  zen.Balance
	unlocked []zen.Achievement
}

func (h hubModel) loaded(msg hubLoadedMsg) hubModel {
	h.loading = false
	h.err = msg.err
	h.balance = msg.balance
	h.unlocked = msg.unlocked
	return h
}

func (h hubModel) View(spin string) string {
	switch {
	case h.loading:
		return spin + " Loading your zen hub…"
	case h.err != nil:
		return styles.ErrorStyle.Padding(0).Render(h.err.Error())
	}

	var b strings.Builder
	b.WriteString(styles.CoinStyle.Render(styles.FormatCoins(h.balance.ZenCoins)) + " zen coins\n\n")
	b.WriteString(styles.TitleStyle.Render("Achievements") + "\n")
	if len(h.unlocked) == 0 {
		b.WriteString(styles.MutedStyle.Render("Finish a session to unlock your first one."))
		return b.String()
	}
	for i, a := range h.unlocked {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s  %s", a.Icon, a.Name, styles.MutedStyle.Render(a.Description))
	}
	return b.String()
}

// boardModel is the leaderboard overlay.
type boardModel struct {
	loading bool
	err     error
	entries []zen.LeaderboardEntry
}

func (bm boardModel) loaded(msg boardLoadedMsg) boardModel {
	bm.loading = false
	bm.err = msg.err
	bm.entries = msg.entries
	return bm
}

func (bm boardModel) View(spin, self string) string {
	switch {
	case bm.loading:
		return spin + " Loading leaderboard…"
	case bm.err != nil:
		return styles.ErrorStyle.Padding(0).Render(bm.err.Error())
	case len(bm.entries) == 0:
		return styles.MutedStyle.Render("Nobody has breathed here yet.")
	}

	rows := make([]string, 0, len(bm.entries)+1)
	rows = append(rows, styles.MutedStyle.Render(fmt.Sprintf("%-4s %-16s %7s %8s %6s", "#", "name", "coins", "sessions", "streak")))
	for _, e := range bm.entries {
		row := fmt.Sprintf("%-4d %-16s %7d %8d %6d",
			e.Rank, styles.TruncateString(e.Username, 16), e.ZenCoins, e.TotalSessions, e.ConsecutiveDays)
		if e.UserID == self {
			row = styles.SelectionIndicatorStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

// moodModel is the mood diary overlay.
type moodModel struct {
	moods   []zen.Mood
	cursor  int
	notes   textinput.Model
	width   int
	pending bool
}

func newMoodModel() moodModel {
	ti := textinput.New()
	ti.Placeholder = "How do you feel? (optional)"
	ti.CharLimit = zen.MaxMoodNotes
	ti.Prompt = ""
	return moodModel{
		moods:  zen.Moods(),
		cursor: 2,
		notes:  ti,
	}
}

func (mm moodModel) SetWidth(w int) moodModel {
	if w < 10 {
		w = 10
	}
	mm.width = w
	mm.notes.Width = w - 2
	return mm
}

func (mm moodModel) Blur() moodModel {
	mm.notes.Blur()
	return mm
}

func (mm *moodModel) Focus() tea.Cmd {
	return mm.notes.Focus()
}

func (mm moodModel) Selected() zen.Mood {
	return mm.moods[mm.cursor]
}

func (mm moodModel) Update(msg tea.Msg) (moodModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Mood.Prev):
			if mm.cursor > 0 {
				mm.cursor--
			}
			return mm, nil
		case key.Matches(k, keys.Mood.Next):
			if mm.cursor < len(mm.moods)-1 {
				mm.cursor++
			}
			return mm, nil
		}
	}
	var cmd tea.Cmd
	mm.notes, cmd = mm.notes.Update(msg)
	return mm, cmd
}

func (mm moodModel) submit(userID string) (moodModel, zen.MoodInput) {
	mm.pending = true
	return mm, zen.MoodInput{
		UserID: userID,
		Mood:   mm.Selected(),
		Notes:  strings.TrimSpace(mm.notes.Value()),
	}
}

func (mm moodModel) submitted() moodModel {
	mm.pending = false
	return mm
}

func (mm moodModel) View() string {
	chips := make([]string, len(mm.moods))
	for i, mood := range mm.moods {
		label := moodLabel(mood)
		if i == mm.cursor {
			chips[i] = styles.SelectionIndicatorStyle.Render("[" + label + "]")
		} else {
			chips[i] = styles.MutedStyle.Render(" " + label + " ")
		}
	}

	picker := lipgloss.NewStyle().Width(mm.width).Render(strings.Join(chips, " "))
	counter := styles.MutedStyle.Render(fmt.Sprintf("%d/%d", len([]rune(mm.notes.Value())), zen.MaxMoodNotes))

	var b strings.Builder
	b.WriteString(picker + "\n\n")
	b.WriteString(mm.notes.View() + "\n")
	b.WriteString(counter + "\n\n")
	if mm.pending {
		b.WriteString(styles.MutedStyle.Render("Saving…"))
	} else {
		b.WriteString(styles.HelpStyle.Padding(0).Render("←/→ mood · ctrl+s save · esc close"))
	}
	return b.String()
}

// moodLabel turns "very_happy" into "very happy".
func moodLabel(m zen.Mood) string {
	return strings.ReplaceAll(string(m), "_", " ")
}
