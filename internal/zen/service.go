package zen

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zjrosen/bloom/internal/cachemanager"
	"github.com/zjrosen/bloom/internal/clock"
	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/metrics"
)

// Leaderboard limits.
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
	DefaultLeaderboardTTL   = 30 * time.Second
)

const dateLayout = "2006-01-02"

// Service holds the gamification rules on top of a Repository.
type Service struct {
	repo    Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	ids     func() string
	ttl     time.Duration
	board   *cachemanager.ReadThroughCache[string, []LeaderboardEntry, int]
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	clock     clock.Clock
	metrics   *metrics.Metrics
	ids       func() string
	ttl       time.Duration
	skipCache bool
}

// WithServiceClock sets the time source used for timestamps and streaks.
func WithServiceClock(c clock.Clock) ServiceOption {
	return func(cfg *serviceConfig) { cfg.clock = c }
}

// WithServiceMetrics records coin and cache metrics.
func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(cfg *serviceConfig) { cfg.ids = fn }
}

// WithLeaderboardTTL sets how long leaderboards stay cached. A zero or
// negative ttl disables the cache.
func WithLeaderboardTTL(ttl time.Duration) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.ttl = ttl
		cfg.skipCache = ttl <= 0
	}
}

// NewService creates a Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	cfg := serviceConfig{
		clock: clock.Real{},
		ids:   uuid.NewString,
		ttl:   DefaultLeaderboardTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Service{
		repo:    repo,
		clock:   cfg.clock,
		metrics: cfg.metrics,
		ids:     cfg.ids,
		ttl:     cfg.ttl,
	}
	cache := cachemanager.NewInMemoryCacheManager[string, []LeaderboardEntry](
		"leaderboard", cfg.ttl, cachemanager.DefaultCleanupInterval)
	s.board = cachemanager.NewReadThroughCache[string, []LeaderboardEntry, int](
		cache, repo.Leaderboard, cfg.skipCache,
		cachemanager.WithLookupHook[string, []LeaderboardEntry, int](cfg.metrics.LeaderboardLookup),
	)
	return s
}

// CreateUser registers a new profile.
func (s *Service) CreateUser(ctx context.Context, username, email string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, &ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(username) > 40 {
		return User{}, &ValidationError{Field: "username", Reason: "must be at most 40 characters"}
	}

	u := User{
		ID:        s.ids(),
		Username:  username,
		Email:     strings.TrimSpace(email),
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	log.Info(log.CatZen, "user created", "user_id", u.ID, "username", u.Username)
	s.board.InvalidateAll(ctx)
	return u, nil
}

// GetUser returns a profile.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// RecordSession stores a completed session, credits SessionReward, updates
// totals and the streak, and unlocks any achievements now reached.
func (s *Service) RecordSession(ctx context.Context, in SessionInput) (SessionResult, error) {
	if in.CyclesCompleted < 0 {
		return SessionResult{}, &ValidationError{Field: "cycles_completed", Reason: "must not be negative"}
	}
	if in.DurationSeconds < 0 {
		return SessionResult{}, &ValidationError{Field: "duration_seconds", Reason: "must not be negative"}
	}

	now := s.now()
	res := SessionResult{ZenCoinsEarned: SessionReward}
	var awarded []Transaction

	err := s.repo.InTx(ctx, func(tx Repository) error {
		u, err := tx.GetUser(ctx, in.UserID)
		if err != nil {
			return err
		}

		res.Session = BreathingSession{
			ID:              s.ids(),
			UserID:          u.ID,
			Intention:       in.Intention,
			PatternName:     in.PatternName,
			CyclesCompleted: in.CyclesCompleted,
			DurationSeconds: in.DurationSeconds,
			ZenCoinsEarned:  SessionReward,
			CreatedAt:       now,
		}
		if err := tx.InsertSession(ctx, res.Session); err != nil {
			return err
		}

		u.TotalSessions++
		u.TotalMinutes += in.DurationSeconds / 60
		u.ConsecutiveDays = nextStreak(u.LastSessionDate, u.ConsecutiveDays, now)
		u.LastSessionDate = now.Format(dateLayout)

		credit := s.transaction(u.ID, SessionReward, ReasonSession, "Completed "+describe(in), now)
		u.ZenCoins += credit.Amount
		awarded = append(awarded, credit)

		unlocked, credits, err := s.unlock(ctx, tx, &u, now)
		if err != nil {
			return err
		}
		res.NewAchievements = unlocked
		awarded = append(awarded, credits...)

		for _, t := range awarded {
			if err := tx.InsertTransaction(ctx, t); err != nil {
				return err
			}
		}
		return tx.UpdateUser(ctx, u)
	})
	if err != nil {
		return SessionResult{}, fmt.Errorf("recording session: %w", err)
	}

	s.afterCredit(ctx, awarded)
	log.Info(log.CatZen, "session recorded", "user_id", in.UserID, "intention", in.Intention,
		"achievements", len(res.NewAchievements))
	return res, nil
}

// SubmitMood stores a mood diary entry and credits MoodReward.
func (s *Service) SubmitMood(ctx context.Context, in MoodInput) (MoodResult, error) {
	if !in.Mood.Valid() {
		return MoodResult{}, &ValidationError{Field: "mood", Reason: fmt.Sprintf("unknown mood %q", in.Mood)}
	}
	if utf8.RuneCountInString(in.Notes) > MaxMoodNotes {
		return MoodResult{}, &ValidationError{Field: "notes", Reason: fmt.Sprintf("must be at most %d characters", MaxMoodNotes)}
	}

	now := s.now()
	res := MoodResult{ZenCoinsEarned: MoodReward}
	var awarded []Transaction

	err := s.repo.InTx(ctx, func(tx Repository) error {
		u, err := tx.GetUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		res.Entry = MoodEntry{
			ID:        s.ids(),
			UserID:    u.ID,
			Mood:      in.Mood,
			Notes:     in.Notes,
			CreatedAt: now,
		}
		if err := tx.InsertMood(ctx, res.Entry); err != nil {
			return err
		}

		credit := s.transaction(u.ID, MoodReward, ReasonMood, "Mood diary: "+string(in.Mood), now)
		u.ZenCoins += credit.Amount
		awarded = append(awarded, credit)

		unlocked, credits, err := s.unlock(ctx, tx, &u, now)
		if err != nil {
			return err
		}
		res.NewAchievements = unlocked
		awarded = append(awarded, credits...)

		for _, t := range awarded {
			if err := tx.InsertTransaction(ctx, t); err != nil {
				return err
			}
		}
		return tx.UpdateUser(ctx, u)
	})
	if err != nil {
		return MoodResult{}, fmt.Errorf("recording mood: %w", err)
	}

	s.afterCredit(ctx, awarded)
	return res, nil
}

// Balance returns a user's coins.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{UserID: u.ID, ZenCoins: u.ZenCoins}, nil
}

// Transactions lists a user's credits, newest first.
func (s *Service) Transactions(ctx context.Context, userID string) ([]Transaction, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

// Achievements lists every achievement.
func (s *Service) Achievements() []Achievement {
	return Achievements()
}

// UnlockedAchievements lists what a user has unlocked.
func (s *Service) UnlockedAchievements(ctx context.Context, userID string) ([]Achievement, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.repo.UnlockedAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	out := make([]Achievement, 0, len(ids))
	for _, a := range achievements {
		if slices.Contains(ids, a.ID) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Courses lists every course.
func (s *Service) Courses() []Course {
	return Courses()
}

// AvailableCourses lists courses the user has unlocked and not completed.
func (s *Service) AvailableCourses(ctx context.Context, userID string) ([]Course, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	done, err := s.repo.CompletedCourses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing completed courses: %w", err)
	}
	out := []Course{}
	for _, c := range courses {
		if c.Available(u.TotalSessions) && !slices.Contains(done, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CompleteCourse marks a course complete and credits its reward once.
func (s *Service) CompleteCourse(ctx context.Context, courseID, userID string) (CourseResult, error) {
	course, ok := CourseByID(courseID)
	if !ok {
		return CourseResult{}, fmt.Errorf("completing course %s: %w", courseID, ErrCourseNotFound)
	}

	now := s.now()
	res := CourseResult{Course: course, ZenCoinsEarned: course.ZenCoinReward}
	var awarded []Transaction

	err := s.repo.InTx(ctx, func(tx Repository) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if !course.Available(u.TotalSessions) {
			return &PrerequisiteError{CourseID: course.ID, Required: course.RequiredSessions, Have: u.TotalSessions}
		}
		fresh, err := tx.CompleteCourse(ctx, u.ID, course.ID, now)
		if err != nil {
			return err
		}
		if !fresh {
			return ErrCourseCompleted
		}

		credit := s.transaction(u.ID, course.ZenCoinReward, ReasonCourse, "Completed course: "+course.Name, now)
		u.ZenCoins += credit.Amount
		awarded = append(awarded, credit)

		unlocked, credits, err := s.unlock(ctx, tx, &u, now)
		if err != nil {
			return err
		}
		res.NewAchievements = unlocked
		awarded = append(awarded, credits...)

		for _, t := range awarded {
			if err := tx.InsertTransaction(ctx, t); err != nil {
				return err
			}
		}
		return tx.UpdateUser(ctx, u)
	})
	if err != nil {
		return CourseResult{}, fmt.Errorf("completing course %s: %w", courseID, err)
	}

	s.afterCredit(ctx, awarded)
	return res, nil
}

// Leaderboard returns the top users by coins. limit is clamped to
// [1, MaxLeaderboardLimit]; zero means DefaultLeaderboardLimit.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		limit = MaxLeaderboardLimit
	}
	entries, err := s.board.Get(ctx, fmt.Sprintf("top:%d", limit), limit, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	return entries, nil
}

// unlock checks every locked achievement against u's counters and credits
// the newly reached ones. u.ZenCoins is updated in place.
func (s *Service) unlock(ctx context.Context, tx Repository, u *User, now time.Time) ([]Achievement, []Transaction, error) {
	moods, err := tx.CountMoods(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	done, err := tx.CompletedCourses(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	progress := Progress{
		Sessions: u.TotalSessions,
		Streak:   u.ConsecutiveDays,
		Moods:    moods,
		Courses:  len(done),
	}

	unlocked := []Achievement{}
	var credits []Transaction
	for _, a := range achievements {
		if !a.Reached(progress) {
			continue
		}
		fresh, err := tx.UnlockAchievement(ctx, u.ID, a.ID, now)
		if err != nil {
			return nil, nil, err
		}
		if !fresh {
			continue
		}
		unlocked = append(unlocked, a)
		credit := s.transaction(u.ID, a.ZenCoinReward, ReasonAchievement, "Achievement: "+a.Name, now)
		u.ZenCoins += credit.Amount
		credits = append(credits, credit)
		log.Info(log.CatZen, "achievement unlocked", "user_id", u.ID, "achievement", a.ID)
	}
	return unlocked, credits, nil
}

func (s *Service) transaction(userID string, amount int, reason TransactionReason, desc string, now time.Time) Transaction {
	return Transaction{
		ID:          s.ids(),
		UserID:      userID,
		Amount:      amount,
		Reason:      reason,
		Description: desc,
		CreatedAt:   now,
	}
}

func (s *Service) afterCredit(ctx context.Context, awarded []Transaction) {
	for _, t := range awarded {
		s.metrics.CoinsAwarded(string(t.Reason), t.Amount)
	}
	if len(awarded) > 0 {
		s.board.InvalidateAll(ctx)
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// nextStreak returns the consecutive-day count after a session on now.
// A second session on the same day keeps the streak; a session the day
// after the last extends it; anything else restarts it at 1.
func nextStreak(lastDate string, streak int, now time.Time) int {
	if lastDate == "" {
		return 1
	}
	last, err := time.Parse(dateLayout, lastDate)
	if err != nil {
		return 1
	}
	today, _ := time.Parse(dateLayout, now.Format(dateLayout))
	switch days := int(today.Sub(last).Hours() / 24); days {
	case 0:
		return max(streak, 1)
	case 1:
		return streak + 1
	default:
		return 1
	}
}

func describe(in SessionInput) string {
	switch {
	case in.PatternName != "" && in.Intention != "":
		return in.PatternName + " (" + in.Intention + ")"
	case in.PatternName != "":
		return in.PatternName
	case in.Intention != "":
		return in.Intention
	default:
		return "breathing session"
	}
}

// IsNotFound reports whether err means a missing user or course.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrCourseNotFound)
}
