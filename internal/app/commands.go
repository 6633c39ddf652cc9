package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/bloom/internal/config"
	"github.com/zjrosen/bloom/internal/garden"
	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/mode"
	"github.com/zjrosen/bloom/internal/zen"
	"github.com/zjrosen/bloom/internal/zen/client"
)

// leaderboardSize is how many ranks the overlay shows.
const leaderboardSize = 10

type oasisLoadedMsg struct {
	oasis garden.Oasis
	err   error
}

type userReadyMsg struct {
	user    zen.User
	created bool
	err     error
}

type hubLoadedMsg struct {
	balance  zen.Balance
	unlocked []zen.Achievement
	err      error
}

type boardLoadedMsg struct {
	entries []zen.LeaderboardEntry
	err     error
}

type moodSubmittedMsg struct {
	result zen.MoodResult
	err    error
}

var errNoUser = errors.New("not registered with the zen server yet")

func loadOasisCmd(ctx context.Context, store garden.Store) tea.Cmd {
	return func() tea.Msg {
		o, err := store.Load(ctx)
		if err != nil {
			log.ErrorErr(log.CatGarden, "Loading oasis failed", err)
		}
		return oasisLoadedMsg{oasis: o, err: err}
	}
}

// ensureUserCmd resolves the zen identity: a known id is checked against the
// server, otherwise the configured username is registered and the new id is
// written back to the config file.
func ensureUserCmd(ctx context.Context, z mode.Zen, cfg config.ZenConfig, configPath string) tea.Cmd {
	return func() tea.Msg {
		if id := z.UserID(); id != "" {
			u, err := z.GetUser(ctx, id)
			if err == nil {
				return userReadyMsg{user: u}
			}
			if !client.IsNotFound(err) || cfg.Username == "" {
				return userReadyMsg{err: err}
			}
			log.Warn(log.CatZen, "Saved user unknown to server, registering again", "user_id", id)
		}
		if cfg.Username == "" {
			return userReadyMsg{err: errNoUser}
		}

		u, err := z.CreateUser(ctx, cfg.Username, "")
		if err != nil {
			return userReadyMsg{err: err}
		}
		if configPath != "" {
			if err := config.SaveZenUserID(configPath, u.ID); err != nil {
				log.ErrorErr(log.CatConfig, "Saving zen user id failed", err, "path", configPath)
			}
		}
		log.Info(log.CatZen, "Registered zen user", "user_id", u.ID, "username", u.Username)
		return userReadyMsg{user: u, created: true}
	}
}

func loadHubCmd(ctx context.Context, z mode.Zen) tea.Cmd {
	return func() tea.Msg {
		id := z.UserID()
		if id == "" {
			return hubLoadedMsg{err: errNoUser}
		}
		balance, err := z.Balance(ctx, id)
		if err != nil {
			return hubLoadedMsg{err: err}
		}
		unlocked, err := z.UserAchievements(ctx, id)
		if err != nil {
			return hubLoadedMsg{err: err}
		}
		return hubLoadedMsg{balance: balance, unlocked: unlocked}
	}
}

func loadBoardCmd(ctx context.Context, z mode.Zen) tea.Cmd {
	return func() tea.Msg {
		entries, err := z.Leaderboard(ctx, leaderboardSize)
		return boardLoadedMsg{entries: entries, err: err}
	}
}

func submitMoodCmd(ctx context.Context, z mode.Zen, in zen.MoodInput) tea.Cmd {
	return func() tea.Msg {
		res, err := z.SubmitMood(ctx, in)
		return moodSubmittedMsg{result: res, err: err}
	}
}
