package zen

// AchievementKind is the counter an achievement threshold applies to.
type AchievementKind string

const (
	KindSessions AchievementKind = "sessions"
	KindStreak   AchievementKind = "streak"
	KindMoods    AchievementKind = "moods"
	KindCourses  AchievementKind = "courses"
)

// Achievement is unlocked once its counter reaches Threshold.
type Achievement struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Icon          string          `json:"icon"`
	ZenCoinReward int             `json:"zen_coin_reward"`
	Kind          AchievementKind `json:"kind"`
	Threshold     int             `json:"threshold"`
}

// Progress is the set of counters achievements are checked against.
type Progress struct {
	Sessions int
	Streak   int
	Moods    int
	Courses  int
}

func (p Progress) value(k AchievementKind) int {
	switch k {
	case KindSessions:
		return p.Sessions
	case KindStreak:
		return p.Streak
	case KindMoods:
		return p.Moods
	case KindCourses:
		return p.Courses
	default:
		return 0
	}
}

// Reached reports whether p satisfies a.
func (a Achievement) Reached(p Progress) bool {
	return p.value(a.Kind) >= a.Threshold
}

var achievements = []Achievement{
	{ID: "first_breath", Name: "First Breath", Description: "Complete your first breathing session", Icon: "🌱", ZenCoinReward: 10, Kind: KindSessions, Threshold: 1},
	{ID: "steady_breather", Name: "Steady Breather", Description: "Complete 5 breathing sessions", Icon: "🌿", ZenCoinReward: 25, Kind: KindSessions, Threshold: 5},
	{ID: "breath_master", Name: "Breath Master", Description: "Complete 25 breathing sessions", Icon: "🌳", ZenCoinReward: 100, Kind: KindSessions, Threshold: 25},
	{ID: "three_day_streak", Name: "Three Day Streak", Description: "Breathe on 3 consecutive days", Icon: "🔥", ZenCoinReward: 30, Kind: KindStreak, Threshold: 3},
	{ID: "week_of_calm", Name: "Week of Calm", Description: "Breathe on 7 consecutive days", Icon: "🌙", ZenCoinReward: 75, Kind: KindStreak, Threshold: 7},
	{ID: "mood_explorer", Name: "Mood Explorer", Description: "Write 5 mood diary entries", Icon: "📔", ZenCoinReward: 20, Kind: KindMoods, Threshold: 5},
	{ID: "scholar", Name: "Scholar", Description: "Complete your first course", Icon: "🎓", ZenCoinReward: 30, Kind: KindCourses, Threshold: 1},
}

// Achievements lists every achievement.
func Achievements() []Achievement {
	out := make([]Achievement, len(achievements))
	copy(out, achievements)
	return out
}

// AchievementByID looks up an achievement.
func AchievementByID(id string) (Achievement, bool) {
	for _, a := range achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Level is a course difficulty.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Course is a guided programme unlocked by a number of sessions.
type Course struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Level            Level  `json:"level"`
	ZenCoinReward    int    `json:"zen_coin_reward"`
	DurationMinutes  int    `json:"duration_minutes"`
	RequiredSessions int    `json:"required_sessions"`
}

var courses = []Course{
	{ID: "breath-basics", Name: "Breath Basics", Description: "Learn diaphragmatic breathing and the rhythm of a calm breath.", Level: LevelBeginner, ZenCoinReward: 20, DurationMinutes: 10, RequiredSessions: 0},
	{ID: "box-mastery", Name: "Box Breathing Mastery", Description: "Hold steady through four equal sides of the breath.", Level: LevelIntermediate, ZenCoinReward: 40, DurationMinutes: 15, RequiredSessions: 5},
	{ID: "relaxing-breath", Name: "The Relaxing Breath", Description: "Practice 4-7-8 breathing for deep relaxation and sleep.", Level: LevelIntermediate, ZenCoinReward: 50, DurationMinutes: 15, RequiredSessions: 10},
	{ID: "heart-coherence", Name: "Heart Coherence", Description: "Find the resonant pace of five and a half breaths per minute.", Level: LevelAdvanced, ZenCoinReward: 80, DurationMinutes: 20, RequiredSessions: 20},
}

// Courses lists every course.
func Courses() []Course {
	out := make([]Course, len(courses))
	copy(out, courses)
	return out
}

// CourseByID looks up a course.
func CourseByID(id string) (Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

// Available reports whether a user with the given session count may take c.
func (c Course) Available(sessions int) bool {
	return sessions >= c.RequiredSessions
}
