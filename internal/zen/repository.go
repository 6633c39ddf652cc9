package zen

import (
	"context"
	"time"
)

// Repository persists Zen state. Implementations return ErrUserNotFound and
// ErrDuplicateUsername where applicable.
type Repository interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, u User) error

	InsertSession(ctx context.Context, s BreathingSession) error
	InsertTransaction(ctx context.Context, t Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)
	InsertMood(ctx context.Context, m MoodEntry) error
	CountMoods(ctx context.Context, userID string) (int, error)

	// UnlockAchievement returns false when the achievement was already unlocked.
	UnlockAchievement(ctx context.Context, userID, achievementID string, at time.Time) (bool, error)
	UnlockedAchievements(ctx context.Context, userID string) ([]string, error)
	// CompleteCourse returns false when the course was already completed.
	CompleteCourse(ctx context.Context, userID, courseID string, at time.Time) (bool, error)
	CompletedCourses(ctx context.Context, userID string) ([]string, error)

	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// InTx runs fn against a repository bound to one transaction.
	InTx(ctx context.Context, fn func(Repository) error) error
}
