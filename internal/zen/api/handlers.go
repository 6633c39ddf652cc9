package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zjrosen/bloom/internal/zen"
)

// Handlers binds HTTP requests to a zen.Service.
type Handlers struct {
	svc *zen.Service
}

// NewHandlers creates handlers for svc.
func NewHandlers(svc *zen.Service) *Handlers {
	return &Handlers{svc: svc}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
}

// CreateUser handles POST /api/users.
func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONErrorResponse(c, Validation("invalid user", err.Error()))
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// GetUser handles GET /api/users/:id.
func (h *Handlers) GetUser(c *gin.Context) {
	u, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type sessionRequest struct {
	UserID          string  `json:"user_id" binding:"required"`
	Intention       string  `json:"intention"`
	PatternName     string  `json:"pattern_name"`
	CyclesCompleted int     `json:"cycles_completed"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RecordSession handles POST /api/breathing-sessions.
func (h *Handlers) RecordSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONErrorResponse(c, Validation("invalid breathing session", err.Error()))
		return
	}
	res, err := h.svc.RecordSession(c.Request.Context(), zen.SessionInput(req))
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Balance handles GET /api/zen-coins/:id/balance.
func (h *Handlers) Balance(c *gin.Context) {
	b, err := h.svc.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Transactions handles GET /api/zen-coins/:id/transactions.
func (h *Handlers) Transactions(c *gin.Context) {
	txs, err := h.svc.Transactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

type moodRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Mood   string `json:"mood" binding:"required"`
	Notes  string `json:"notes"`
}

// SubmitMood handles POST /api/mood-diary.
func (h *Handlers) SubmitMood(c *gin.Context) {
	var req moodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONErrorResponse(c, Validation("invalid mood entry", err.Error()))
		return
	}
	res, err := h.svc.SubmitMood(c.Request.Context(), zen.MoodInput{
		UserID: req.UserID,
		Mood:   zen.Mood(req.Mood),
		Notes:  req.Notes,
	})
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Achievements handles GET /api/achievements.
func (h *Handlers) Achievements(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Achievements())
}

// UserAchievements handles GET /api/achievements/:id.
func (h *Handlers) UserAchievements(c *gin.Context) {
	as, err := h.svc.UnlockedAchievements(c.Request.Context(), c.Param("id"))
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, as)
}

// Courses handles GET /api/courses.
func (h *Handlers) Courses(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Courses())
}

// AvailableCourses handles GET /api/courses/:id/available, where :id is a
// user id.
func (h *Handlers) AvailableCourses(c *gin.Context) {
	cs, err := h.svc.AvailableCourses(c.Request.Context(), c.Param("id"))
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

// CompleteCourse handles POST /api/courses/:id/complete?user_id=.
func (h *Handlers) CompleteCourse(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		JSONErrorResponse(c, BadRequest("user_id query parameter is required"))
		return
	}
	res, err := h.svc.CompleteCourse(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Leaderboard handles GET /api/leaderboard?limit=.
func (h *Handlers) Leaderboard(c *gin.Context) {
	limit := zen.DefaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			JSONErrorResponse(c, Validation("invalid limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}
	board, err := h.svc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// Health handles GET /healthz.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
