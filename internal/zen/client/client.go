// Package client talks to a Zen gamification server and reports completed
// breathing sessions to it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
	"github.com/zjrosen/bloom/internal/zen"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 5 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("zen server: %d %s: %s (%s)", e.StatusCode, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("zen server: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a Zen API client. Set the user with SetUserID before recording
// sessions through the Observer methods.
type Client struct {
	base   *url.URL
	http   *http.Client
	broker *pubsub.Broker[zen.SessionResult]

	mu     sync.RWMutex
	userID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUserID sets the user sessions are recorded for.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing zen base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("zen base url %q must be http or https", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: DefaultTimeout},
		broker: pubsub.NewBroker[zen.SessionResult](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Rewards publishes the result of every session recorded by the observer.
func (c *Client) Rewards() *pubsub.Broker[zen.SessionResult] {
	return c.broker
}

// UserID returns the configured user.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// SetUserID changes the configured user.
func (c *Client) SetUserID(id string) {
	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
}

// CreateUser registers a profile.
func (c *Client) CreateUser(ctx context.Context, username, email string) (zen.User, error) {
	var u zen.User
	err := c.do(ctx, http.MethodPost, "/api/users", nil,
		map[string]string{"username": username, "email": email}, &u)
	return u, err
}

// GetUser fetches a profile.
func (c *Client) GetUser(ctx context.Context, id string) (zen.User, error) {
	var u zen.User
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, nil, &u)
	return u, err
}

// RecordSession reports a completed session.
func (c *Client) RecordSession(ctx context.Context, in zen.SessionInput) (zen.SessionResult, error) {
	var res zen.SessionResult
	err := c.do(ctx, http.MethodPost, "/api/breathing-sessions", nil, in, &res)
	return res, err
}

// Balance fetches a user's coins.
func (c *Client) Balance(ctx context.Context, userID string) (zen.Balance, error) {
	var b zen.Balance
	err := c.do(ctx, http.MethodGet, "/api/zen-coins/"+url.PathEscape(userID)+"/balance", nil, nil, &b)
	return b, err
}

// Transactions fetches a user's coin history.
func (c *Client) Transactions(ctx context.Context, userID string) ([]zen.Transaction, error) {
	var txs []zen.Transaction
	err := c.do(ctx, http.MethodGet, "/api/zen-coins/"+url.PathEscape(userID)+"/transactions", nil, nil, &txs)
	return txs, err
}

// SubmitMood writes a mood diary entry.
func (c *Client) SubmitMood(ctx context.Context, in zen.MoodInput) (zen.MoodResult, error) {
	var res zen.MoodResult
	err := c.do(ctx, http.MethodPost, "/api/mood-diary", nil, in, &res)
	return res, err
}

// Achievements lists every achievement.
func (c *Client) Achievements(ctx context.Context) ([]zen.Achievement, error) {
	var as []zen.Achievement
	err := c.do(ctx, http.MethodGet, "/api/achievements", nil, nil, &as)
	return as, err
}

// UserAchievements lists a user's unlocked achievements.
func (c *Client) UserAchievements(ctx context.Context, userID string) ([]zen.Achievement, error) {
	var as []zen.Achievement
	err := c.do(ctx, http.MethodGet, "/api/achievements/"+url.PathEscape(userID), nil, nil, &as)
	return as, err
}

// Leaderboard fetches the top limit users.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]zen.LeaderboardEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var board []zen.LeaderboardEntry
	err := c.do(ctx, http.MethodGet, "/api/leaderboard", q, nil, &board)
	return board, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// Name implements session.Named.
func (c *Client) Name() string { return "zen" }

// OnSessionStarted implements session.Observer.
func (c *Client) OnSessionStarted(context.Context, string) {}

// OnSessionCompleted records the completion for the configured user and
// publishes the reward. Without a user it does nothing.
func (c *Client) OnSessionCompleted(ctx context.Context, done session.Completion) error {
	userID := c.UserID()
	if userID == "" {
		return nil
	}
	res, err := c.RecordSession(ctx, zen.SessionInput{
		UserID:          userID,
		Intention:       done.Intention,
		PatternName:     done.PatternName,
		CyclesCompleted: done.CyclesCompleted,
		DurationSeconds: done.DurationSeconds,
	})
	if err != nil {
		return fmt.Errorf("recording session with zen server: %w", err)
	}
	log.Info(log.CatZen, "session rewarded", "coins", res.ZenCoinsEarned, "achievements", len(res.NewAchievements))
	c.broker.Publish(pubsub.CreatedEvent, res)
	return nil
}

// OnSessionAbandoned implements session.Observer.
func (c *Client) OnSessionAbandoned(context.Context) {}

// Close shuts down the rewards broker.
func (c *Client) Close() {
	c.broker.Close()
}
