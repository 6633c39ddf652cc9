// Package mode defines the TUI screens and the services they share.
package mode

import (
	"context"

	"github.com/zjrosen/bloom/internal/clock"
	"github.com/zjrosen/bloom/internal/config"
	"github.com/zjrosen/bloom/internal/flags"
	"github.com/zjrosen/bloom/internal/garden"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
	"github.com/zjrosen/bloom/internal/ui/toaster"
	"github.com/zjrosen/bloom/internal/zen"
)

// Screen identifies the current application screen.
type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenPreparation
	ScreenBreathing
	ScreenCompletion
)

func (s Screen) String() string {
	switch s {
	case ScreenWelcome:
		return "welcome"
	case ScreenPreparation:
		return "preparation"
	case ScreenBreathing:
		return "breathing"
	case ScreenCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// Zen is the part of the zen client the TUI uses.
type Zen interface {
	UserID() string
	SetUserID(id string)
	CreateUser(ctx context.Context, username, email string) (zen.User, error)
	GetUser(ctx context.Context, id string) (zen.User, error)
	Balance(ctx context.Context, userID string) (zen.Balance, error)
	SubmitMood(ctx context.Context, in zen.MoodInput) (zen.MoodResult, error)
	UserAchievements(ctx context.Context, userID string) ([]zen.Achievement, error)
	Leaderboard(ctx context.Context, limit int) ([]zen.LeaderboardEntry, error)
	Rewards() *pubsub.Broker[zen.SessionResult]
}

// Services contains the dependencies shared by every screen.
type Services struct {
	Catalog    *pattern.Catalog
	Controller *session.Controller
	Gardener   *garden.Gardener // nil when the garden flag is off
	Zen        Zen              // nil when gamification is off
	Flags      *flags.Registry
	Config     *config.Config
	ConfigPath string
	Clock      clock.Clock
}

// GardenEnabled reports whether the oasis is shown.
func (s Services) GardenEnabled() bool {
	return s.Gardener != nil && s.Flags.Enabled(flags.FlagGarden)
}

// ZenEnabled reports whether the zen overlays are available.
func (s Services) ZenEnabled() bool {
	return s.Zen != nil && s.Flags.Enabled(flags.FlagGamification)
}

// ShowToastMsg asks the app to show a toast.
type ShowToastMsg struct {
	Message string
	Style   toaster.Style
}
