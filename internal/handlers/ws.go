package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/realtime"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/utils"
)

// WebSocket subscribes the caller to refresh notifications of one project.
func WebSocket(c *gin.Context) {
	projectID, err := utils.GetID(c, "project_id")

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}

	if _, err := services.GetProject(db.DB, projectID); err != nil {
		respondError(c, err)
		return
	}

	realtime.Default.Serve(c.Writer, c.Request, projectID)
}
