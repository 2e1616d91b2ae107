package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/clario-app/clario/internal/core/services"
)

type TimerHandler struct {
	svc *services.TimerService
}

func NewTimerHandler(svc *services.TimerService) *TimerHandler {
	return &TimerHandler{svc: svc}
}

type updateSettingsRequest struct {
	FocusMinutes      *int `json:"focus_minutes"`
	ShortBreakMinutes *int `json:"short_break_minutes"`
	LongBreakMinutes  *int `json:"long_break_minutes"`
	LongBreakAfter    *int `json:"long_break_after"`
	DailyGoal         *int `json:"daily_goal"`
}

type startSessionRequest struct {
	Kind           string `json:"kind" binding:"required"`
	Category       string `json:"category"`
	PlannedSeconds int    `json:"planned_seconds"`
	CycleNumber    *int   `json:"cycle_number"`
}

type updateSessionRequest struct {
	SecondsRemaining *int  `json:"seconds_remaining"`
	IsPaused         *bool `json:"is_paused"`
	CycleNumber      *int  `json:"cycle_number"`
}

// completeSessionRequest defaults to a session that ran to completion.
type completeSessionRequest struct {
	ActualSeconds int   `json:"actual_seconds"`
	IsCompleted   *bool `json:"is_completed"`
	WasSkipped    bool  `json:"was_skipped"`
}

func (h *TimerHandler) RegisterRoutes(router *gin.RouterGroup) {
	timer := router.Group("/timer")
	{
		timer.GET("", h.GetState)
		timer.PUT("/settings", h.UpdateSettings)
		timer.POST("/start", h.Start)
		timer.PATCH("/session", h.Update)
		timer.POST("/complete", h.Complete)
		timer.POST("/skip", h.Skip)
		timer.POST("/reset", h.Reset)
	}
}

// GetState godoc
// @Summary      Current timer profile (settings, session, stats)
// @Tags         timer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.TimerProfile
// @Router       /timer [get]
func (h *TimerHandler) GetState(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.svc.GetState(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateSettings godoc
// @Summary      Change durations, cycle length or daily goal
// @Tags         timer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateSettingsRequest  true  "Fields to change"
// @Success      200   {object}  domain.TimerProfile
// @Failure      400   {object}  errorResponse
// @Router       /timer/settings [put]
func (h *TimerHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.svc.UpdateSettings(c.Request.Context(), services.UpdateSettingsInput{
		UserID:            userID,
		FocusMinutes:      req.FocusMinutes,
		ShortBreakMinutes: req.ShortBreakMinutes,
		LongBreakMinutes:  req.LongBreakMinutes,
		LongBreakAfter:    req.LongBreakAfter,
		DailyGoal:         req.DailyGoal,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Start godoc
// @Summary      Start a focus or break session
// @Tags         timer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startSessionRequest  true  "Session"
// @Success      200   {object}  domain.TimerProfile
// @Failure      409   {object}  errorResponse
// @Router       /timer/start [post]
func (h *TimerHandler) Start(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.svc.Start(c.Request.Context(), services.StartSessionInput{
		UserID:         userID,
		Kind:           domain.SessionKind(req.Kind),
		Category:       req.Category,
		PlannedSeconds: req.PlannedSeconds,
		CycleNumber:    req.CycleNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update godoc
// @Summary      Sync remaining seconds or pause state of the running session
// @Tags         timer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateSessionRequest  true  "Fields to change"
// @Success      200   {object}  domain.TimerProfile
// @Failure      409   {object}  errorResponse
// @Router       /timer/session [patch]
func (h *TimerHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.svc.Update(c.Request.Context(), services.UpdateSessionInput{
		UserID:           userID,
		SecondsRemaining: req.SecondsRemaining,
		IsPaused:         req.IsPaused,
		CycleNumber:      req.CycleNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Complete godoc
// @Summary      Finish the running session and advance the cycle
// @Tags         timer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      completeSessionRequest  true  "Outcome"
// @Success      200   {object}  domain.CompletionResult
// @Failure      409   {object}  errorResponse
// @Router       /timer/complete [post]
func (h *TimerHandler) Complete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req completeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	completed := true
	if req.IsCompleted != nil {
		completed = *req.IsCompleted
	}

	result, err := h.svc.Complete(c.Request.Context(), services.CompleteSessionInput{
		UserID:        userID,
		ActualSeconds: req.ActualSeconds,
		IsCompleted:   completed,
		WasSkipped:    req.WasSkipped,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Skip godoc
// @Summary      Skip the running break
// @Tags         timer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.CompletionResult
// @Failure      422  {object}  errorResponse
// @Router       /timer/skip [post]
func (h *TimerHandler) Skip(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.svc.Skip(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reset godoc
// @Summary      Abandon the running session without recording it
// @Tags         timer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.TimerProfile
// @Router       /timer/reset [post]
func (h *TimerHandler) Reset(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.svc.Reset(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
