package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/monitors"
	"github.com/projectdesk/projectdesk/internal/scheduler"
	"github.com/projectdesk/projectdesk/internal/services"
)

const healthTimeout = 2 * time.Second

func HealthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK

	if err := monitors.CheckDatabase(c.Request.Context(), db.DB, healthTimeout); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"message":   "ProjectDesk is running",
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    scheduler.Results(),
	})
}

// GetStats returns the entity counters shown on the dashboard badges.
func GetStats(ctx *gin.Context) {
	counts, err := services.CountEntities(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, counts)
}
