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

type CommentForm struct {
	Task    uint   `form:"task"`
	Content string `form:"content"`
}

func renderCommentForm(ctx *gin.Context, status int, title, action, cancel string, form CommentForm, withTasks bool, fields map[string]string) {
	data := gin.H{
		"Title":  title,
		"Action": action,
		"Cancel": cancel,
		"Form":   form,
		"Errors": fields,
	}

	if withTasks {
		tasks, err := services.ListTasks(db.DB)
		if err != nil {
			handleError(ctx, err, "/comments")
			return
		}
		data["Tasks"] = tasks
	}

	render(ctx, status, "comment_form.html", data)
}

func CommentList(ctx *gin.Context) {
	comments, err := services.ListComments(db.DB)
	if err != nil {
		handleError(ctx, err, "/home")
		return
	}

	render(ctx, http.StatusOK, "comment_list.html", gin.H{
		"Title":     "Comments",
		"Comments":  comments,
		"CanCreate": access.IsCollaboratorOrAdministrator(utils.GetActor(ctx)),
	})
}

func CommentRows(ctx *gin.Context) {
	rows, err := services.ListCommentRows(db.DB)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func CommentDetail(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	comment, err := services.GetComment(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/comments")
		return
	}

	actor := utils.GetActor(ctx)
	render(ctx, http.StatusOK, "comment_detail.html", gin.H{
		"Title":     "Comment",
		"Comment":   comment,
		"ProjectID": comment.Task.ProjectID,
		"CanEdit":   access.CanEditComment(actor, comment.Task.Project, comment),
		"CanDelete": access.CanDeleteComment(actor, comment.Task.Project, comment),
	})
}

func CommentNew(ctx *gin.Context) {
	if !access.IsCollaboratorOrAdministrator(utils.GetActor(ctx)) {
		denied(ctx, "/comments", nil)
		return
	}

	var form CommentForm
	if taskID, err := strconv.ParseUint(ctx.Query("task"), 10, 32); err == nil {
		form.Task = uint(taskID)
	}

	renderCommentForm(ctx, http.StatusOK, "New comment", "/comments/new", "/comments", form, true, nil)
}

// CommentCreate also serves the inline form on the task page.
func CommentCreate(ctx *gin.Context) {
	var form CommentForm
	if err := ctx.ShouldBind(&form); err != nil {
		redirect(ctx, "/comments/new")
		return
	}

	cancel := "/comments"
	if form.Task != 0 {
		cancel = fmt.Sprintf("/tasks/%d", form.Task)
	}

	comment, err := services.CreateComment(db.DB, utils.GetActor(ctx), services.CommentInput{
		TaskID:  form.Task,
		Content: form.Content,
	})
	if validationErr, ok := services.IsValidation(err); ok {
		renderCommentForm(ctx, http.StatusUnprocessableEntity, "New comment", "/comments/new", cancel, form, true, validationErr.Fields)
		return
	}
	if err != nil {
		handleError(ctx, err, cancel)
		return
	}

	realtime.Default.BroadcastRefresh(comment.Task.ProjectID, "comment")

	setFlash(ctx, "success", "Comment added.")
	redirect(ctx, fmt.Sprintf("/tasks/%d", comment.TaskID))
}

func loadEditableComment(ctx *gin.Context, check func(*access.Actor, *models.Project, *models.Comment) bool) (*models.Comment, string, bool) {
	id, ok := pathID(ctx)
	if !ok {
		return nil, "", false
	}

	comment, err := services.GetComment(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/comments")
		return nil, "", false
	}

	target := fmt.Sprintf("/comments/%d", id)
	if !check(utils.GetActor(ctx), comment.Task.Project, comment) {
		denied(ctx, target, nil)
		return nil, "", false
	}

	return comment, target, true
}

func CommentEdit(ctx *gin.Context) {
	comment, target, ok := loadEditableComment(ctx, access.CanEditComment)
	if !ok {
		return
	}

	form := CommentForm{Task: comment.TaskID, Content: comment.Content}
	renderCommentForm(ctx, http.StatusOK, "Edit comment", target+"/edit", target, form, false, nil)
}

func CommentUpdate(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	target := fmt.Sprintf("/comments/%d", id)

	var form CommentForm
	if err := ctx.ShouldBind(&form); err != nil {
		redirect(ctx, target+"/edit")
		return
	}

	comment, err := services.UpdateComment(db.DB, utils.GetActor(ctx), id, services.CommentInput{
		TaskID:  form.Task,
		Content: form.Content,
	})
	if validationErr, ok := services.IsValidation(err); ok {
		renderCommentForm(ctx, http.StatusUnprocessableEntity, "Edit comment", target+"/edit", target, form, false, validationErr.Fields)
		return
	}
	if err != nil {
		handleError(ctx, err, target)
		return
	}

	realtime.Default.BroadcastRefresh(comment.Task.ProjectID, "comment")

	setFlash(ctx, "success", "Comment updated.")
	redirect(ctx, target)
}

func CommentDeleteConfirm(ctx *gin.Context) {
	comment, target, ok := loadEditableComment(ctx, access.CanDeleteComment)
	if !ok {
		return
	}

	render(ctx, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":  "Delete comment",
		"Kind":   "comment",
		"Name":   comment.Content,
		"Action": target + "/delete",
		"Cancel": target,
	})
}

func CommentDelete(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	comment, err := services.DeleteComment(db.DB, utils.GetActor(ctx), id)
	if err != nil {
		handleError(ctx, err, fmt.Sprintf("/comments/%d", id))
		return
	}

	realtime.Default.BroadcastRefresh(comment.Task.ProjectID, "comment")

	setFlash(ctx, "success", "Comment deleted.")
	redirect(ctx, fmt.Sprintf("/tasks/%d", comment.TaskID))
}
