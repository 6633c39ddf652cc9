package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-sqlite3"

	"github.com/zjrosen/bloom/internal/zen"
)

// querier is the subset of *sql.DB and *sql.Tx the repository needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = `id, username, email, zen_coins, total_sessions, total_minutes,
	consecutive_days, last_session_date, created_at`

// zenRepository implements zen.Repository. db is nil when bound to a
// transaction.
type zenRepository struct {
	db *sql.DB
	q  querier
}

func newZenRepository(db *sql.DB) *zenRepository {
	return &zenRepository{db: db, q: db}
}

var _ zen.Repository = (*zenRepository)(nil)

func scanUser(scanner interface{ Scan(...any) error }) (zen.User, error) {
	var (
		u         zen.User
		createdAt int64
	)
	err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.ZenCoins, &u.TotalSessions, &u.TotalMinutes,
		&u.ConsecutiveDays, &u.LastSessionDate, &createdAt)
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, err
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) ||
		errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser inserts u. Returns zen.ErrDuplicateUsername on a taken name.
func (r *zenRepository) CreateUser(ctx context.Context, u zen.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.ZenCoins, u.TotalSessions, u.TotalMinutes,
		u.ConsecutiveDays, u.LastSessionDate, u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", zen.ErrDuplicateUsername, u.Username)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser returns zen.ErrUserNotFound for an unknown id.
func (r *zenRepository) GetUser(ctx context.Context, id string) (zen.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return zen.User{}, fmt.Errorf("%w: %s", zen.ErrUserNotFound, id)
	}
	if err != nil {
		return zen.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// UpdateUser writes the mutable counters of u.
func (r *zenRepository) UpdateUser(ctx context.Context, u zen.User) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET email = ?, zen_coins = ?, total_sessions = ?, total_minutes = ?,
			consecutive_days = ?, last_session_date = ?
		WHERE id = ?`,
		u.Email, u.ZenCoins, u.TotalSessions, u.TotalMinutes, u.ConsecutiveDays, u.LastSessionDate, u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", zen.ErrUserNotFound, u.ID)
	}
	return nil
}

// InsertSession records a breathing session.
func (r *zenRepository) InsertSession(ctx context.Context, s zen.BreathingSession) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO breathing_sessions (id, user_id, intention, pattern_name, cycles_completed,
			duration_seconds, zen_coins_earned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Intention, s.PatternName, s.CyclesCompleted,
		s.DurationSeconds, s.ZenCoinsEarned, s.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert breathing session: %w", err)
	}
	return nil
}

// InsertTransaction records a coin credit.
func (r *zenRepository) InsertTransaction(ctx context.Context, t zen.Transaction) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO coin_transactions (id, user_id, amount, reason, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Amount, string(t.Reason), t.Description, t.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a user's credits, newest first.
func (r *zenRepository) ListTransactions(ctx context.Context, userID string) ([]zen.Transaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, amount, reason, description, created_at
		FROM coin_transactions WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []zen.Transaction{}
	for rows.Next() {
		var (
			t         zen.Transaction
			reason    string
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &reason, &t.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Reason = zen.TransactionReason(reason)
		t.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return out, nil
}

// InsertMood records a mood diary entry.
func (r *zenRepository) InsertMood(ctx context.Context, m zen.MoodEntry) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO mood_entries (id, user_id, mood, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, string(m.Mood), m.Notes, m.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert mood entry: %w", err)
	}
	return nil
}

// CountMoods counts a user's mood entries.
func (r *zenRepository) CountMoods(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM mood_entries WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count mood entries: %w", err)
	}
	return n, nil
}

// UnlockAchievement inserts the pair if absent.
func (r *zenRepository) UnlockAchievement(ctx context.Context, userID, achievementID string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)`,
		userID, achievementID, at.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("failed to unlock achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read unlock result: %w", err)
	}
	return n == 1, nil
}

// UnlockedAchievements lists achievement ids in unlock order.
func (r *zenRepository) UnlockedAchievements(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx,
		`SELECT achievement_id FROM user_achievements WHERE user_id = ? ORDER BY unlocked_at, rowid`, userID)
}

// CompleteCourse inserts the pair if absent.
func (r *zenRepository) CompleteCourse(ctx context.Context, userID, courseID string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO course_completions (user_id, course_id, completed_at) VALUES (?, ?, ?)`,
		userID, courseID, at.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("failed to complete course: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read completion result: %w", err)
	}
	return n == 1, nil
}

// CompletedCourses lists course ids in completion order.
func (r *zenRepository) CompletedCourses(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx,
		`SELECT course_id FROM course_completions WHERE user_id = ? ORDER BY completed_at, rowid`, userID)
}

func (r *zenRepository) ids(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Leaderboard ranks users by coins, then username.
func (r *zenRepository) Leaderboard(ctx context.Context, limit int) ([]zen.LeaderboardEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, username, zen_coins, total_sessions, consecutive_days
		FROM users ORDER BY zen_coins DESC, username ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []zen.LeaderboardEntry{}
	for rows.Next() {
		e := zen.LeaderboardEntry{Rank: len(out) + 1}
		if err := rows.Scan(&e.UserID, &e.Username, &e.ZenCoins, &e.TotalSessions, &e.ConsecutiveDays); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return out, nil
}

// InTx runs fn in a transaction. Nested calls reuse the outer transaction.
func (r *zenRepository) InTx(ctx context.Context, fn func(zen.Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&zenRepository{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
