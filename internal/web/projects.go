package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/realtime"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/utils"
)

type ProjectForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	Status      string `form:"status"`
}

func (f ProjectForm) input() services.ProjectInput {
	return services.ProjectInput{
		Name:        f.Name,
		Description: f.Description,
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		Status:      f.Status,
	}
}

func projectForm(project *models.Project) ProjectForm {
	startDate := project.StartDate
	return ProjectForm{
		Name:        project.Name,
		Description: project.Description,
		StartDate:   services.FormatDate(&startDate),
		EndDate:     services.FormatDate(project.EndDate),
		Status:      string(project.Status),
	}
}

func renderProjectForm(ctx *gin.Context, status int, title, action, cancel string, form ProjectForm, fields map[string]string) {
	render(ctx, status, "project_form.html", gin.H{
		"Title":    title,
		"Action":   action,
		"Cancel":   cancel,
		"Form":     form,
		"Errors":   fields,
		"Statuses": models.ProjectStatuses,
	})
}

func ProjectList(ctx *gin.Context) {
	projects, err := services.ListProjects(db.DB)
	if err != nil {
		handleError(ctx, err, "/home")
		return
	}

	render(ctx, http.StatusOK, "project_list.html", gin.H{
		"Title":     "Projects",
		"Projects":  projects,
		"CanCreate": access.CanCreateProject(utils.GetActor(ctx)),
	})
}

// ProjectRows answers a POST to the list URL with the reduced projection.
func ProjectRows(ctx *gin.Context) {
	rows, err := services.ListProjectRows(db.DB)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func ProjectDetail(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	project, err := services.GetProjectTree(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/projects")
		return
	}

	actor := utils.GetActor(ctx)
	render(ctx, http.StatusOK, "project_detail.html", gin.H{
		"Title":     project.Name,
		"Project":   project,
		"ProjectID": project.ID,
		"CanEdit":   access.CanEditProject(actor, project),
		"CanDelete": access.CanDeleteProject(actor),
		"CanWrite":  access.CanWriteInProject(actor, project),
	})
}

func ProjectNew(ctx *gin.Context) {
	if !access.CanCreateProject(utils.GetActor(ctx)) {
		denied(ctx, "/projects", nil)
		return
	}

	form := ProjectForm{
		StartDate: time.Now().Format(services.DateLayout),
		Status:    string(models.ProjectPending),
	}
	renderProjectForm(ctx, http.StatusOK, "New project", "/projects/new", "/projects", form, nil)
}

func ProjectCreate(ctx *gin.Context) {
	var form ProjectForm
	if err := ctx.ShouldBind(&form); err != nil {
		redirect(ctx, "/projects/new")
		return
	}

	project, err := services.CreateProject(db.DB, utils.GetActor(ctx), form.input())
	if validationErr, ok := services.IsValidation(err); ok {
		renderProjectForm(ctx, http.StatusUnprocessableEntity, "New project", "/projects/new", "/projects", form, validationErr.Fields)
		return
	}
	if err != nil {
		handleError(ctx, err, "/projects")
		return
	}

	setFlash(ctx, "success", "Project created.")
	redirect(ctx, fmt.Sprintf("/projects/%d", project.ID))
}

func ProjectEdit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	project, err := services.GetProject(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/projects")
		return
	}

	target := fmt.Sprintf("/projects/%d", id)
	if !access.CanEditProject(utils.GetActor(ctx), project) {
		denied(ctx, target, nil)
		return
	}

	renderProjectForm(ctx, http.StatusOK, "Edit project", target+"/edit", target, projectForm(project), nil)
}

func ProjectUpdate(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	target := fmt.Sprintf("/projects/%d", id)

	var form ProjectForm
	if err := ctx.ShouldBind(&form); err != nil {
		redirect(ctx, target+"/edit")
		return
	}

	project, err := services.UpdateProject(db.DB, utils.GetActor(ctx), id, form.input())
	if validationErr, ok := services.IsValidation(err); ok {
		renderProjectForm(ctx, http.StatusUnprocessableEntity, "Edit project", target+"/edit", target, form, validationErr.Fields)
		return
	}
	if err != nil {
		handleError(ctx, err, target)
		return
	}

	realtime.Default.BroadcastRefresh(project.ID, "project")

	setFlash(ctx, "success", "Project updated.")
	redirect(ctx, target)
}

func ProjectDeleteConfirm(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	project, err := services.GetProjectTree(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/projects")
		return
	}

	target := fmt.Sprintf("/projects/%d", id)
	if !access.CanDeleteProject(utils.GetActor(ctx)) {
		denied(ctx, target, nil)
		return
	}

	render(ctx, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":       "Delete project",
		"Kind":        "project",
		"Name":        project.Name,
		"Consequence": fmt.Sprintf("Its %d task(s) and their comments will be deleted as well.", len(project.Tasks)),
		"Action":      target + "/delete",
		"Cancel":      target,
	})
}

func ProjectDelete(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := services.DeleteProject(db.DB, utils.GetActor(ctx), id); err != nil {
		handleError(ctx, err, fmt.Sprintf("/projects/%d", id))
		return
	}

	realtime.Default.BroadcastRefresh(id, "project")

	setFlash(ctx, "success", "Project deleted.")
	redirect(ctx, "/projects")
}

func renderCollaborators(ctx *gin.Context, status int, project *models.Project, selected map[uint]bool, fields map[string]string) {
	users, err := services.ListUsers(db.DB)
	if err != nil {
		handleError(ctx, err, "/projects")
		return
	}

	render(ctx, status, "collaborators.html", gin.H{
		"Title":    "Collaborators",
		"Project":  project,
		"Users":    users,
		"Selected": selected,
		"Errors":   fields,
	})
}

func CollaboratorsForm(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	project, err := services.GetProject(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/projects")
		return
	}

	if !access.CanManageCollaborators(utils.GetActor(ctx), project) {
		denied(ctx, fmt.Sprintf("/projects/%d", id), nil)
		return
	}

	selected := map[uint]bool{}
	for _, user := range project.Collaborators() {
		selected[user.ID] = true
	}

	renderCollaborators(ctx, http.StatusOK, project, selected, nil)
}

func CollaboratorsUpdate(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	target := fmt.Sprintf("/projects/%d", id)

	userIDs, err := utils.ParseIDs(ctx.PostFormArray("collaborators"))
	if err != nil {
		redirect(ctx, target+"/collaborators")
		return
	}

	project, err := services.SetCollaborators(db.DB, utils.GetActor(ctx), id, userIDs)
	if validationErr, ok := services.IsValidation(err); ok {
		current, getErr := services.GetProject(db.DB, id)
		if getErr != nil {
			handleError(ctx, getErr, "/projects")
			return
		}

		selected := map[uint]bool{}
		for _, userID := range userIDs {
			selected[userID] = true
		}
		renderCollaborators(ctx, http.StatusUnprocessableEntity, current, selected, validationErr.Fields)
		return
	}
	if err != nil {
		handleError(ctx, err, target)
		return
	}

	realtime.Default.BroadcastRefresh(project.ID, "project")

	setFlash(ctx, "success", "Collaborators updated.")
	redirect(ctx, target)
}
