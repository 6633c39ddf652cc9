// Package zen implements the Zen Coin gamification layer: user profiles,
// coin rewards for breathing sessions and mood entries, streaks,
// achievements, courses and the leaderboard.
package zen

import "time"

// Coin rewards.
const (
	SessionReward = 10
	MoodReward    = 5
)

// MaxMoodNotes bounds mood diary notes, in characters.
const MaxMoodNotes = 200

// User is a Zen profile.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email,omitempty"`
	ZenCoins        int       `json:"zen_coins"`
	TotalSessions   int       `json:"total_sessions"`
	TotalMinutes    float64   `json:"total_minutes"`
	ConsecutiveDays int       `json:"consecutive_days"`
	LastSessionDate string    `json:"last_session_date,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// BreathingSession is a recorded completed session.
type BreathingSession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Intention       string    `json:"intention"`
	PatternName     string    `json:"pattern_name"`
	CyclesCompleted int       `json:"cycles_completed"`
	DurationSeconds float64   `json:"duration_seconds"`
	ZenCoinsEarned  int       `json:"zen_coins_earned"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionReason explains a coin credit.
type TransactionReason string

const (
	ReasonSession     TransactionReason = "breathing_session"
	ReasonMood        TransactionReason = "mood_entry"
	ReasonAchievement TransactionReason = "achievement"
	ReasonCourse      TransactionReason = "course"
)

// Transaction is one coin credit.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Amount      int               `json:"amount"`
	Reason      TransactionReason `json:"reason"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Mood is a mood diary value.
type Mood string

const (
	MoodVeryHappy Mood = "very_happy"
	MoodHappy     Mood = "happy"
	MoodCalm      Mood = "calm"
	MoodPeaceful  Mood = "peaceful"
	MoodNeutral   Mood = "neutral"
	MoodAnxious   Mood = "anxious"
	MoodStressed  Mood = "stressed"
	MoodSad       Mood = "sad"
)

// Moods lists every accepted mood in display order.
func Moods() []Mood {
	return []Mood{MoodVeryHappy, MoodHappy, MoodCalm, MoodPeaceful, MoodNeutral, MoodAnxious, MoodStressed, MoodSad}
}

// Valid reports whether m is a known mood.
func (m Mood) Valid() bool {
	for _, known := range Moods() {
		if m == known {
			return true
		}
	}
	return false
}

// MoodEntry is one mood diary entry.
type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      Mood      `json:"mood"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	ZenCoins        int    `json:"zen_coins"`
	TotalSessions   int    `json:"total_sessions"`
	ConsecutiveDays int    `json:"consecutive_days"`
}

// SessionInput is a completed session reported by a client.
type SessionInput struct {
	UserID          string  `json:"user_id"`
	Intention       string  `json:"intention"`
	PatternName     string  `json:"pattern_name"`
	CyclesCompleted int     `json:"cycles_completed"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// MoodInput is a mood diary submission.
type MoodInput struct {
	UserID string `json:"user_id"`
	Mood   Mood   `json:"mood"`
	Notes  string `json:"notes"`
}

// SessionResult is returned after recording a session.
type SessionResult struct {
	Session         BreathingSession `json:"session"`
	ZenCoinsEarned  int              `json:"zen_coins_earned"`
	NewAchievements []Achievement    `json:"new_achievements"`
}

// MoodResult is returned after recording a mood entry.
type MoodResult struct {
	Entry           MoodEntry     `json:"entry"`
	ZenCoinsEarned  int           `json:"zen_coins_earned"`
	NewAchievements []Achievement `json:"new_achievements"`
}

// CourseResult is returned after completing a course.
type CourseResult struct {
	Course          Course        `json:"course"`
	ZenCoinsEarned  int           `json:"zen_coins_earned"`
	NewAchievements []Achievement `json:"new_achievements"`
}

// Balance is a user's coin balance.
type Balance struct {
	UserID   string `json:"user_id"`
	ZenCoins int    `json:"zen_coins"`
}
