package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/clario-app/clario/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

type updateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Version     int    `json:"version"`
}

type toggleLogRequest struct {
	Day string `json:"day"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/stats", h.GlobalStats)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/archive", h.Archive)
		habits.POST("/:id/restore", h.Restore)
		habits.GET("/:id/logs", h.ListLogs)
		habits.POST("/:id/logs", h.ToggleLog)
		habits.GET("/:id/stats", h.MonthlyStats)
	}
}

// Create godoc
// @Summary      Create a habit
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createHabitRequest  true  "Habit"
// @Success      201   {object}  domain.Habit
// @Failure      400   {object}  errorResponse
// @Router       /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// List godoc
// @Summary      List habits with up-to-date streaks
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Habit
// @Router       /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Update godoc
// @Summary      Edit a habit (optimistic locking on version)
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Habit ID"
// @Param        body  body      updateHabitRequest  true  "Fields to change"
// @Success      200   {object}  domain.Habit
// @Failure      409   {object}  errorResponse
// @Router       /habits/{id} [put]
func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Version:     req.Version,
	})
	if err != nil {
		if errors.Is(err, domain.ErrHabitConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "version conflict",
				"message": "Data has been modified elsewhere. Please sync.",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Delete godoc
// @Summary      Delete a habit
// @Tags         habits
// @Security     BearerAuth
// @Param        id  path  string  true  "Habit ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Archive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Restore(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Restore(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// ToggleLog godoc
// @Summary      Flip completion for a day (today when omitted)
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true   "Habit ID"
// @Param        body  body      toggleLogRequest  false  "Day as YYYY-MM-DD"
// @Success      200   {object}  services.ToggleLogResult
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /habits/{id}/logs [post]
func (h *HabitHandler) ToggleLog(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req toggleLogRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	result, err := h.svc.ToggleLog(c.Request.Context(), services.ToggleLogInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		Day:     req.Day,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListLogs godoc
// @Summary      Completion history between two days
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Habit ID"
// @Param        from  query     string  false  "YYYY-MM-DD"
// @Param        to    query     string  false  "YYYY-MM-DD"
// @Success      200   {array}   domain.HabitLog
// @Router       /habits/{id}/logs [get]
func (h *HabitHandler) ListLogs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	logs, err := h.svc.ListLogs(c.Request.Context(), services.ListLogsInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		From:    c.Query("from"),
		To:      c.Query("to"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// MonthlyStats godoc
// @Summary      Completion rate and streaks for one month
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Habit ID"
// @Param        year   query     int     false  "Defaults to the current year"
// @Param        month  query     int     false  "1-12, defaults to the current month"
// @Success      200    {object}  domain.HabitMonthStats
// @Router       /habits/{id}/stats [get]
func (h *HabitHandler) MonthlyStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	year, err := intQuery(c, "year")
	if err != nil {
		badRequest(c, err)
		return
	}
	month, err := intQuery(c, "month")
	if err != nil {
		badRequest(c, err)
		return
	}

	stats, err := h.svc.MonthlyStats(c.Request.Context(), services.MonthlyStatsInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		Year:    year,
		Month:   month,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GlobalStats godoc
// @Summary      Streak and completion summary across active habits
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.GlobalHabitStats
// @Router       /habits/stats [get]
func (h *HabitHandler) GlobalStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.svc.GlobalStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return v, nil
}
