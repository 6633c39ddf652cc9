// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/clock"
	"github.com/zjrosen/bloom/internal/config"
	"github.com/zjrosen/bloom/internal/garden"
	"github.com/zjrosen/bloom/internal/keys"
	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/mode"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
	"github.com/zjrosen/bloom/internal/ui/markdown"
	"github.com/zjrosen/bloom/internal/ui/toaster"
	"github.com/zjrosen/bloom/internal/zen"
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHub
	overlayMood
	overlayLeaderboard
)

// Model is the root application state.
type Model struct {
	services mode.Services
	screen   mode.Screen
	width    int
	height   int

	keys    keys.KeyMap
	help    help.Model
	zones   *zone.Manager
	zoneID  string
	md      *markdown.Renderer
	spinner spinner.Model
	toaster toaster.Model

	cursor     int
	selected   pattern.Intention
	state      breath.State
	pressing   bool
	completion *session.Completion
	oasis      garden.Oasis

	overlay overlayKind
	hub     hubModel
	mood    moodModel
	board   boardModel

	ctx           context.Context
	cancel        context.CancelFunc
	sessionEvents *pubsub.ContinuousListener[session.Event]
	gardenEvents  *pubsub.ContinuousListener[garden.Element]
	rewardEvents  *pubsub.ContinuousListener[zen.SessionResult]
}

// New creates the application model. Subscriptions to the controller,
// gardener and zen client brokers are opened immediately so no event
// published after New is missed.
func New(services mode.Services) Model {
	if services.Clock == nil {
		services.Clock = clock.Real{}
	}
	if services.Config == nil {
		cfg := config.Defaults()
		services.Config = &cfg
	}

	ctx, cancel := context.WithCancel(context.Background())
	zones := zone.New()

	km := keys.DefaultKeyMap()
	if !services.ZenEnabled() {
		km = km.WithoutGamification()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	m := Model{
		services:      services,
		screen:        mode.ScreenWelcome,
		keys:          km,
		help:          help.New(),
		zones:         zones,
		zoneID:        zones.NewPrefix(),
		spinner:       sp,
		toaster:       toaster.New(),
		mood:          newMoodModel(),
		ctx:           ctx,
		cancel:        cancel,
		sessionEvents: pubsub.NewContinuousListener(ctx, services.Controller.Broker()),
	}
	if services.GardenEnabled() {
		m.gardenEvents = pubsub.NewContinuousListener(ctx, services.Gardener.Broker())
	}
	if services.ZenEnabled() {
		m.rewardEvents = pubsub.NewContinuousListener(ctx, services.Zen.Rewards())
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.sessionEvents.Listen()}
	if m.gardenEvents != nil {
		cmds = append(cmds, m.gardenEvents.Listen(), loadOasisCmd(m.ctx, m.services.Gardener.Store()))
	}
	if m.rewardEvents != nil {
		cmds = append(cmds, m.rewardEvents.Listen(),
			ensureUserCmd(m.ctx, m.services.Zen, m.services.Config.Zen, m.services.ConfigPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.mood = m.mood.SetWidth(min(msg.Width-8, 60))
		if r, err := markdown.New(min(msg.Width-8, 72), m.services.Config.UI.MarkdownStyle); err == nil {
			m.md = r
		} else {
			log.ErrorErr(log.CatUI, "Markdown renderer unavailable", err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case pubsub.Event[session.Event]:
		return m.handleSessionEvent(msg)

	case pubsub.Event[garden.Element]:
		m.oasis.Elements = append(m.oasis.Elements, msg.Payload)
		return m, m.gardenEvents.Listen()

	case pubsub.Event[zen.SessionResult]:
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show(rewardMessage(msg.Payload.ZenCoinsEarned, msg.Payload.NewAchievements), toaster.StyleReward, 0)
		return m, tea.Batch(cmd, m.rewardEvents.Listen())

	case oasisLoadedMsg:
		if msg.err != nil {
			return m.toast("Could not load your oasis", toaster.StyleError)
		}
		m.oasis = msg.oasis
		return m, nil

	case userReadyMsg:
		return m.handleUserReady(msg)

	case hubLoadedMsg:
		m.hub = m.hub.loaded(msg)
		return m, nil

	case boardLoadedMsg:
		m.board = m.board.loaded(msg)
		return m, nil

	case moodSubmittedMsg:
		m.mood = m.mood.submitted()
		if msg.err != nil {
			log.ErrorErr(log.CatZen, "Mood entry failed", msg.err)
			return m.toast("Mood entry not saved: "+msg.err.Error(), toaster.StyleError)
		}
		m.overlay = overlayNone
		m.mood = newMoodModel().SetWidth(m.mood.width)
		return m.toast(rewardMessage(msg.result.ZenCoinsEarned, msg.result.NewAchievements), toaster.StyleReward)

	case mode.ShowToastMsg:
		return m.toast(msg.Message, msg.Style)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.overlay == overlayMood {
		var cmd tea.Cmd
		m.mood, cmd = m.mood.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.overlay != overlayNone {
		return m.handleOverlayKey(msg)
	}

	switch m.screen {
	case mode.ScreenBreathing:
		switch {
		case key.Matches(msg, keys.Breathing.Toggle):
			m.pressing = !m.pressing
			m.services.Controller.SetPressing(m.pressing)
			return m, nil
		case key.Matches(msg, keys.Breathing.Abandon):
			m.services.Controller.Reset()
			return m, nil
		case key.Matches(msg, keys.Breathing.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		return m, nil

	case mode.ScreenPreparation:
		switch {
		case key.Matches(msg, m.keys.Enter):
			return m.startSession()
		case key.Matches(msg, m.keys.Back):
			m.screen = mode.ScreenWelcome
			return m, nil
		}

	case mode.ScreenCompletion:
		if key.Matches(msg, m.keys.Enter, m.keys.Back) {
			m.services.Controller.Reset()
			m.completion = nil
			m.screen = mode.ScreenWelcome
			return m, nil
		}

	default:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < m.services.Catalog.Len()-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			return m.choose(m.cursor)
		}
	}

	switch {
	case key.Matches(msg, m.keys.ZenHub):
		return m.openHub()
	case key.Matches(msg, m.keys.MoodDiary):
		m.overlay = overlayMood
		cmd := m.mood.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Leaderboard):
		return m.openLeaderboard()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay == overlayMood {
		switch {
		case key.Matches(msg, keys.Mood.Close):
			m.overlay = overlayNone
			m.mood = m.mood.Blur()
			return m, nil
		case key.Matches(msg, keys.Mood.Submit):
			if m.mood.pending {
				return m, nil
			}
			var in zen.MoodInput
			m.mood, in = m.mood.submit(m.services.Zen.UserID())
			if in.UserID == "" {
				m.mood = m.mood.submitted()
				return m.toast("Not registered with the zen server yet", toaster.StyleError)
			}
			return m, submitMoodCmd(m.ctx, m.services.Zen, in)
		}
		var cmd tea.Cmd
		m.mood, cmd = m.mood.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Back, m.keys.Quit, m.keys.ZenHub, m.keys.Leaderboard) {
		m.overlay = overlayNone
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.overlay != overlayNone {
		return m, nil
	}
	switch m.screen {
	case mode.ScreenBreathing:
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft &&
			m.inZone(m.zoneID+"guide", msg):
			m.pressing = true
			m.services.Controller.SetPressing(true)
		case msg.Action == tea.MouseActionRelease:
			m.pressing = false
			m.services.Controller.SetPressing(false)
		}
	case mode.ScreenWelcome:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		for i := range m.services.Catalog.List() {
			if m.inZone(m.intentionZone(i), msg) {
				m.cursor = i
				return m.choose(i)
			}
		}
	}
	return m, nil
}

func (m Model) handleSessionEvent(ev pubsub.Event[session.Event]) (tea.Model, tea.Cmd) {
	listen := m.sessionEvents.Listen()

	switch ev.Type {
	case session.EventTick:
		if m.screen == mode.ScreenBreathing {
			m.state = ev.Payload.State
		}
		return m, listen

	case session.EventCompleted:
		m.state = ev.Payload.State
		m.completion = ev.Payload.Completion
		m.screen = mode.ScreenCompletion
		m.pressing = false
		m.services.Controller.SetPressing(false)
		if m.services.GardenEnabled() {
			m.oasis.TotalSessions++
		}
		log.Info(log.CatUI, "Showing completion", "intention", ev.Payload.Intention)
		return m, listen

	case session.EventAbandoned:
		if m.screen != mode.ScreenBreathing {
			return m, listen
		}
		m.screen = mode.ScreenWelcome
		m.pressing = false
		m.services.Controller.SetPressing(false)
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show("Session ended early", toaster.StyleInfo, 0)
		return m, tea.Batch(listen, cmd)
	}
	return m, listen
}

func (m Model) handleUserReady(msg userReadyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.ErrorErr(log.CatZen, "Zen user unavailable", msg.err)
		return m.toast("Zen server unavailable: "+msg.err.Error(), toaster.StyleError)
	}
	m.services.Zen.SetUserID(msg.user.ID)
	if msg.created {
		return m.toast(fmt.Sprintf("Registered as %s", msg.user.Username), toaster.StyleSuccess)
	}
	return m, nil
}

func (m Model) choose(i int) (tea.Model, tea.Cmd) {
	list := m.services.Catalog.List()
	if i < 0 || i >= len(list) {
		return m, nil
	}
	m.selected = list[i]
	m.screen = mode.ScreenPreparation
	return m, nil
}

func (m Model) startSession() (tea.Model, tea.Cmd) {
	m.pressing = false
	m.services.Controller.SetPressing(false)

	state, err := m.services.Controller.Start(m.ctx, m.selected.Key)
	if err != nil {
		log.ErrorErr(log.CatUI, "Could not start session", err, "intention", m.selected.Key)
		return m.toast(err.Error(), toaster.StyleError)
	}
	m.state = state
	m.completion = nil
	m.screen = mode.ScreenBreathing
	return m, nil
}

func (m Model) openHub() (tea.Model, tea.Cmd) {
	m.overlay = overlayHub
	m.hub = hubModel{loading: true}
	return m, tea.Batch(m.spinner.Tick, loadHubCmd(m.ctx, m.services.Zen))
}

func (m Model) openLeaderboard() (tea.Model, tea.Cmd) {
	m.overlay = overlayLeaderboard
	m.board = boardModel{loading: true}
	return m, tea.Batch(m.spinner.Tick, loadBoardCmd(m.ctx, m.services.Zen))
}

func (m Model) loading() bool {
	return (m.overlay == overlayHub && m.hub.loading) ||
		(m.overlay == overlayLeaderboard && m.board.loading)
}

func (m Model) toast(message string, style toaster.Style) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(message, style, 0)
	return m, cmd
}

// inZone reports whether msg falls inside a zone from the last render.
// Zones register asynchronously, so an unknown id is a miss.
func (m Model) inZone(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

func (m Model) intentionZone(i int) string {
	return fmt.Sprintf("%sintention:%d", m.zoneID, i)
}

// rewardMessage reads like "+10 zen coins · First Breath unlocked".
func rewardMessage(coins int, unlocked []zen.Achievement) string {
	parts := []string{fmt.Sprintf("+%d zen coins", coins)}
	for _, a := range unlocked {
		parts = append(parts, a.Name+" unlocked")
	}
	return strings.Join(parts, " · ")
}

// Screen returns the active screen.
func (m Model) Screen() mode.Screen {
	return m.screen
}

// Close releases the model's subscriptions.
func (m *Model) Close() error {
	m.cancel()
	m.zones.Close()
	return nil
}
