package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/assessment-api/internal/service"
)

// StatsHandler handles candidate history and the admin dashboard.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// UserStats returns the caller's aggregate history.
func (h *StatsHandler) UserStats(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	stats, err := h.statsService.GetUserStats(userID)
	if err != nil {
		handleServiceError(c, "StatsHandler.UserStats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// AdminStats returns the platform dashboard counters.
func (h *StatsHandler) AdminStats(c *gin.Context) {
	stats, err := h.statsService.GetAdminStats()
	if err != nil {
		handleServiceError(c, "StatsHandler.AdminStats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
