package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/utils"
)

func landing(heading string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		counts, err := services.CountEntities(db.DB)
		if err != nil {
			handleError(ctx, err, "/login")
			return
		}

		render(ctx, http.StatusOK, "home.html", gin.H{
			"Title":            heading,
			"Heading":          heading,
			"Counts":           counts,
			"CanCreateProject": access.CanCreateProject(utils.GetActor(ctx)),
		})
	}
}

var (
	Home             = landing("Welcome")
	AdminView        = landing("Administrator dashboard")
	CollaboratorView = landing("Collaborator dashboard")
	ViewerView       = landing("Viewer dashboard")
)

// Badgets answers the dashboard counters as JSON.
func Badgets(ctx *gin.Context) {
	counts, err := services.CountEntities(db.DB)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, counts)
}
