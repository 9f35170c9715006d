package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/realtime"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/utils"
)

type TaskForm struct {
	Project     uint   `form:"project"`
	Name        string `form:"name"`
	Description string `form:"description"`
	Status      string `form:"status"`
	DueDate     string `form:"due_date"`
	AssignedTo  string `form:"assigned_to"`
}

func (f TaskForm) input() (services.TaskInput, error) {
	assignedTo, err := utils.ParseOptionalID(f.AssignedTo)
	if err != nil {
		return services.TaskInput{}, services.NewValidationError("assigned_to", "Select a valid choice.")
	}

	return services.TaskInput{
		ProjectID:    f.Project,
		Name:         f.Name,
		Description:  f.Description,
		Status:       f.Status,
		DueDate:      f.DueDate,
		AssignedToID: assignedTo,
	}, nil
}

func taskForm(task *models.Task) TaskForm {
	form := TaskForm{
		Project:     task.ProjectID,
		Name:        task.Name,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     services.FormatDate(task.DueDate),
	}
	if task.AssignedToID != nil {
		form.AssignedTo = strconv.FormatUint(uint64(*task.AssignedToID), 10)
	}
	return form
}

func renderTaskForm(ctx *gin.Context, status int, title, action, cancel string, form TaskForm, fields map[string]string) {
	projects, err := services.ListProjects(db.DB)
	if err != nil {
		handleError(ctx, err, "/tasks")
		return
	}

	users, err := services.ListUsers(db.DB)
	if err != nil {
		handleError(ctx, err, "/tasks")
		return
	}

	render(ctx, status, "task_form.html", gin.H{
		"Title":    title,
		"Action":   action,
		"Cancel":   cancel,
		"Form":     form,
		"Errors":   fields,
		"Statuses": models.TaskStatuses,
		"Projects": projects,
		"Users":    users,
	})
}

// saveTask runs create or update and re-renders the form on validation errors.
func saveTask(ctx *gin.Context, title, action, cancel string, save func(services.TaskInput) (*models.Task, error)) (*models.Task, bool) {
	var form TaskForm
	if err := ctx.ShouldBind(&form); err != nil {
		redirect(ctx, action)
		return nil, false
	}

	in, err := form.input()
	if err == nil {
		var task *models.Task
		task, err = save(in)
		if err == nil {
			return task, true
		}
	}

	if validationErr, ok := services.IsValidation(err); ok {
		renderTaskForm(ctx, http.StatusUnprocessableEntity, title, action, cancel, form, validationErr.Fields)
		return nil, false
	}

	handleError(ctx, err, cancel)
	return nil, false
}

func TaskList(ctx *gin.Context) {
	tasks, err := services.ListTasks(db.DB)
	if err != nil {
		handleError(ctx, err, "/home")
		return
	}

	render(ctx, http.StatusOK, "task_list.html", gin.H{
		"Title":     "Tasks",
		"Tasks":     tasks,
		"CanCreate": access.IsCollaboratorOrAdministrator(utils.GetActor(ctx)),
	})
}

func TaskRows(ctx *gin.Context) {
	rows, err := services.ListTaskRows(db.DB)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func TaskDetail(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	task, err := services.GetTask(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/tasks")
		return
	}

	actor := utils.GetActor(ctx)
	render(ctx, http.StatusOK, "task_detail.html", gin.H{
		"Title":      task.Name,
		"Task":       task,
		"ProjectID":  task.ProjectID,
		"CanEdit":    access.CanWriteInProject(actor, task.Project),
		"CanDelete":  access.CanDeleteTask(actor, task.Project),
		"CanComment": access.CanWriteInProject(actor, task.Project),
	})
}

func TaskNew(ctx *gin.Context) {
	if !access.IsCollaboratorOrAdministrator(utils.GetActor(ctx)) {
		denied(ctx, "/tasks", nil)
		return
	}

	form := TaskForm{Status: string(models.TaskPending)}
	if projectID, err := strconv.ParseUint(ctx.Query("project"), 10, 32); err == nil {
		form.Project = uint(projectID)
	}

	renderTaskForm(ctx, http.StatusOK, "New task", "/tasks/new", "/tasks", form, nil)
}

func TaskCreate(ctx *gin.Context) {
	actor := utils.GetActor(ctx)

	task, ok := saveTask(ctx, "New task", "/tasks/new", "/tasks", func(in services.TaskInput) (*models.Task, error) {
		return services.CreateTask(db.DB, actor, in)
	})
	if !ok {
		return
	}

	realtime.Default.BroadcastRefresh(task.ProjectID, "task")

	setFlash(ctx, "success", "Task created.")
	redirect(ctx, fmt.Sprintf("/tasks/%d", task.ID))
}

func TaskEdit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	task, err := services.GetTask(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/tasks")
		return
	}

	target := fmt.Sprintf("/tasks/%d", id)
	if !access.CanWriteInProject(utils.GetActor(ctx), task.Project) {
		denied(ctx, target, nil)
		return
	}

	renderTaskForm(ctx, http.StatusOK, "Edit task", target+"/edit", target, taskForm(task), nil)
}

func TaskUpdate(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	target := fmt.Sprintf("/tasks/%d", id)
	actor := utils.GetActor(ctx)

	var previousProject uint
	task, ok := saveTask(ctx, "Edit task", target+"/edit", target, func(in services.TaskInput) (*models.Task, error) {
		if current, err := services.GetTask(db.DB, id); err == nil {
			previousProject = current.ProjectID
		}
		return services.UpdateTask(db.DB, actor, id, in)
	})
	if !ok {
		return
	}

	realtime.Default.BroadcastRefresh(task.ProjectID, "task")
	if previousProject != 0 && previousProject != task.ProjectID {
		realtime.Default.BroadcastRefresh(previousProject, "task")
	}

	setFlash(ctx, "success", "Task updated.")
	redirect(ctx, target)
}

func TaskDeleteConfirm(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	task, err := services.GetTask(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/tasks")
		return
	}

	target := fmt.Sprintf("/tasks/%d", id)
	if !access.CanDeleteTask(utils.GetActor(ctx), task.Project) {
		denied(ctx, target, nil)
		return
	}

	render(ctx, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":       "Delete task",
		"Kind":        "task",
		"Name":        task.Name,
		"Consequence": fmt.Sprintf("Its %d comment(s) will be deleted as well.", len(task.Comments)),
		"Action":      target + "/delete",
		"Cancel":      target,
	})
}

func TaskDelete(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	task, err := services.DeleteTask(db.DB, utils.GetActor(ctx), id)
	if err != nil {
		handleError(ctx, err, fmt.Sprintf("/tasks/%d", id))
		return
	}

	realtime.Default.BroadcastRefresh(task.ProjectID, "task")

	setFlash(ctx, "success", "Task deleted.")
	redirect(ctx, fmt.Sprintf("/projects/%d", task.ProjectID))
}
