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

type TaskRequest struct {
	ProjectID   *uint   `json:"project"`
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
	AssignedTo  *uint   `json:"assigned_to"`
}

var taskReadOnly = []string{"id", "created_by", "created_by_id", "comments", "created_at", "updated_at"}

func (r TaskRequest) input(base services.TaskInput, partial bool) services.TaskInput {
	if !partial {
		base = services.TaskInput{}
	}
	if r.ProjectID != nil {
		base.ProjectID = *r.ProjectID
	}
	if r.Name != nil || !partial {
		base.Name = stringValue(r.Name)
	}
	if r.Description != nil || !partial {
		base.Description = stringValue(r.Description)
	}
	if r.Status != nil || !partial {
		base.Status = stringValue(r.Status)
	}
	if r.DueDate != nil || !partial {
		base.DueDate = stringValue(r.DueDate)
	}
	// 0 clears the assignee on PATCH.
	if r.AssignedTo != nil || !partial {
		base.AssignedToID = r.AssignedTo
	}
	return base
}

func taskInput(task *models.Task) services.TaskInput {
	return services.TaskInput{
		ProjectID:    task.ProjectID,
		Name:         task.Name,
		Description:  task.Description,
		Status:       string(task.Status),
		DueDate:      services.FormatDate(task.DueDate),
		AssignedToID: task.AssignedToID,
	}
}

func ListTasks(ctx *gin.Context) {
	tasks, err := services.ListTasks(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponses(tasks))
}

func ListTaskRows(ctx *gin.Context) {
	rows, err := services.ListTaskRows(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetTask(ctx *gin.Context) {
	taskID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := services.GetTask(db.DB, taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

func CreateTask(ctx *gin.Context) {
	var body TaskRequest

	if !bindWritable(ctx, &body, taskReadOnly...) {
		return
	}

	task, err := services.CreateTask(db.DB, utils.GetActor(ctx), body.input(services.TaskInput{}, false))

	if err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(task.ProjectID, "task")

	ctx.JSON(http.StatusCreated, types.NewTaskResponse(task))
}

func UpdateTask(ctx *gin.Context) {
	taskID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body TaskRequest

	if !bindWritable(ctx, &body, taskReadOnly...) {
		return
	}

	current, err := services.GetTask(db.DB, taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	partial := ctx.Request.Method == http.MethodPatch
	task, err := services.UpdateTask(db.DB, utils.GetActor(ctx), taskID, body.input(taskInput(current), partial))

	if err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(task.ProjectID, "task")
	if task.ProjectID != current.ProjectID {
		realtime.Default.BroadcastRefresh(current.ProjectID, "task")
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
	taskID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := services.DeleteTask(db.DB, utils.GetActor(ctx), taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(task.ProjectID, "task")

	ctx.Status(http.StatusNoContent)
}
