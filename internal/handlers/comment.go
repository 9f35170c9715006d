package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/realtime"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/projectdesk/projectdesk/internal/utils"
)

type CommentRequest struct {
	TaskID  uint    `json:"task"`
	Content *string `json:"content"`
}

var commentReadOnly = []string{"id", "author", "author_id", "created_at", "updated_at"}

func ListComments(ctx *gin.Context) {
	comments, err := services.ListComments(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCommentResponses(comments))
}

func ListCommentRows(ctx *gin.Context) {
	rows, err := services.ListCommentRows(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetComment(ctx *gin.Context) {
	commentID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := services.GetComment(db.DB, commentID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCommentResponse(comment))
}

func CreateComment(ctx *gin.Context) {
	var body CommentRequest

	if !bindWritable(ctx, &body, commentReadOnly...) {
		return
	}

	comment, err := services.CreateComment(db.DB, utils.GetActor(ctx), services.CommentInput{
		TaskID:  body.TaskID,
		Content: stringValue(body.Content),
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(comment.Task.ProjectID, "comment")

	ctx.JSON(http.StatusCreated, types.NewCommentResponse(comment))
}

func UpdateComment(ctx *gin.Context) {
	commentID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CommentRequest

	if !bindWritable(ctx, &body, commentReadOnly...) {
		return
	}

	current, err := services.GetComment(db.DB, commentID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	content := current.Content
	if body.Content != nil {
		content = *body.Content
	}

	comment, err := services.UpdateComment(db.DB, utils.GetActor(ctx), commentID, services.CommentInput{
		TaskID:  body.TaskID,
		Content: content,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(comment.Task.ProjectID, "comment")

	ctx.JSON(http.StatusOK, types.NewCommentResponse(comment))
}

func DeleteComment(ctx *gin.Context) {
	commentID, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := services.DeleteComment(db.DB, utils.GetActor(ctx), commentID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	realtime.Default.BroadcastRefresh(comment.Task.ProjectID, "comment")

	ctx.Status(http.StatusNoContent)
}
