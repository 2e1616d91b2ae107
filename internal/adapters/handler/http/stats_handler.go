package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clario-app/clario/internal/core/domain"
	"github.com/clario-app/clario/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/range", h.GetRangeTotals)
		stats.GET("/streak", h.GetStreak)
	}
}

// GetRangeTotals godoc
// @Summary      Focus and break minutes since the start of the day, week or month
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        range  query     string  false  "day, week or month"  default(day)
// @Param        tz     query     string  false  "IANA time zone"
// @Success      200    {object}  domain.RangeTotals
// @Failure      400    {object}  errorResponse
// @Router       /stats/range [get]
func (h *StatsHandler) GetRangeTotals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	totals, err := h.svc.RangeTotals(c.Request.Context(), services.RangeInput{
		UserID:   userID,
		Range:    domain.StatsRange(c.DefaultQuery("range", string(domain.RangeDay))),
		Timezone: c.Query("tz"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// GetStreak godoc
// @Summary      Consecutive days meeting a focus-session goal
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        goal  query     int     false  "Sessions per day (defaults to the daily goal setting)"
// @Param        tz    query     string  false  "IANA time zone"
// @Success      200   {object}  domain.GoalStreak
// @Failure      400   {object}  errorResponse
// @Router       /stats/streak [get]
func (h *StatsHandler) GetStreak(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	input := services.StreakInput{
		UserID:   userID,
		Timezone: c.Query("tz"),
	}

	if raw := c.Query("goal"); raw != "" {
		goal, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, errors.New("goal must be an integer"))
			return
		}
		input.Goal = &goal
	}

	streak, err := h.svc.StreakLength(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, streak)
}
