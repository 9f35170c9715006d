package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/realtime"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/projectdesk/projectdesk/internal/utils"
)

type ProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Status      *string `json:"status"`
}

type CollaboratorsRequest struct {
	UserIDs []uint `json:"user_ids"`
}

var projectReadOnly = []string{"id", "creator", "creator_id", "collaborators", "tasks", "created_at", "updated_at"}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// input applies the request onto base. PATCH keeps absent fields, PUT and
// POST clear them.
func (r ProjectRequest) input(base services.ProjectInput, partial bool) services.ProjectInput {
	if !partial {
		base = services.ProjectInput{}
	}
	if r.Name != nil || !partial {
		base.Name = stringValue(r.Name)
	}
	if r.Description != nil || !partial {
		base.Description = stringValue(r.Description)
	}
	if r.StartDate != nil || !partial {
		base.StartDate = stringValue(r.StartDate)
	}
	if r.EndDate != nil || !partial {
		base.EndDate = stringValue(r.EndDate)
	}
	if r.Status != nil || !partial {
		base.Status = stringValue(r.Status)
	}
	return base
}

func projectInput(project *models.Project) services.ProjectInput {
	startDate := project.StartDate
	return services.ProjectInput{
		Name:        project.Name,
		Description: project.Description,
		StartDate:   services.FormatDate(&startDate),
		EndDate:     services.FormatDate(project.EndDate),
		Status:      string(project.Status),
	}
}

func ListProjects(ctx *gin.Context) {
	projects, err := services.ListProjectTrees(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponses(projects))
}

func ListProjectRows(ctx *gin.Context) {
	rows, err := services.ListProjectRows(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetProject(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := services.GetProjectTree(db.DB, projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func CreateProject(ctx *gin.Context) {
	var body ProjectRequest

	if !bindWritable(ctx, &body, projectReadOnly...) {
		return
	}

	project, err := services.CreateProject(db.DB, utils.GetActor(ctx), body.input(services.ProjectInput{}, false))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewProjectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body ProjectRequest

	if !bindWritable(ctx, &body, projectReadOnly...) {
		return
	}

	current, err := services.GetProject(db.DB, projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	partial := ctx.Request.Method == http.MethodPatch
	project, err := services.UpdateProject(db.DB, utils.GetActor(ctx), projectID, body.input(projectInput(current), partial))

	if err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(project.ID, "project")

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteProject(db.DB, utils.GetActor(ctx), projectID); err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(projectID, "project")

	ctx.Status(http.StatusNoContent)
}

// SetProjectCollaborators replaces the collaborator set.
func SetProjectCollaborators(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CollaboratorsRequest

	if !bindWritable(ctx, &body) {
		return
	}

	project, err := services.SetCollaborators(db.DB, utils.GetActor(ctx), projectID, body.UserIDs)

	if err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(project.ID, "project")

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}
