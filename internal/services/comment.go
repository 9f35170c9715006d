package services

import (
	"errors"
	"strings"

	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentInput struct {
	TaskID  uint
	Content string
}

type CommentRow struct {
	ID     uint   `json:"id"`
	Task   string `json:"task"`
	Author string `json:"author"`
}

func ListComments(conn *gorm.DB) ([]models.Comment, error) {
	var comments []models.Comment

	err := conn.Preload("Task").
		Preload("Author").
		Order(models.CommentOrder).
		Find(&comments).Error

	return comments, err
}

func ListCommentRows(conn *gorm.DB) ([]CommentRow, error) {
	rows := []CommentRow{}

	err := conn.Model(&models.Comment{}).
		Select("comments.id AS id, tasks.name AS task, COALESCE(users.username, '') AS author").
		Joins("JOIN tasks ON tasks.id = comments.task_id").
		Joins("LEFT JOIN users ON users.id = comments.author_id").
		Order(models.CommentOrder).
		Scan(&rows).Error

	return rows, err
}

// GetComment loads the comment with its author and its task's project.
func GetComment(conn *gorm.DB, id uint) (*models.Comment, error) {
	var comment models.Comment

	err := conn.Preload("Author").
		Preload("Task").
		Preload("Task.Project").
		Preload("Task.Project.Memberships").
		First(&comment, id).Error

	if err != nil {
		return nil, translate(err, "comment")
	}

	return &comment, nil
}

func validateContent(errs fieldErrors, content string) string {
	if strings.TrimSpace(content) == "" {
		errs.add("content", "This field is required.")
	}
	return content
}

// CreateComment stamps the acting user as author. Only project members write.
func CreateComment(conn *gorm.DB, actor *access.Actor, in CommentInput) (*models.Comment, error) {
	if !access.IsCollaboratorOrAdministrator(actor) {
		return nil, permissionDenied("only collaborators and administrators can comment")
	}

	errs := fieldErrors{}
	content := validateContent(errs, in.Content)

	var task *models.Task
	if in.TaskID == 0 {
		errs.add("task", "This field is required.")
	} else {
		found, err := GetTask(conn, in.TaskID)
		switch {
		case errors.Is(err, ErrNotFound):
			errs.add("task", "Select a valid choice. That task does not exist.")
		case err != nil:
			return nil, err
		default:
			task = found
		}
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	if !access.CanWriteInProject(actor, task.Project) {
		return nil, permissionDenied("you are not a member of this project")
	}

	authorID := actor.ID
	comment := models.Comment{
		TaskID:   task.ID,
		AuthorID: &authorID,
		Content:  content,
	}

	err := conn.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&comment).Error
	})
	if err != nil {
		return nil, translate(err, "comment")
	}

	return GetComment(conn, comment.ID)
}

// UpdateComment edits the content only; a comment stays on its task.
func UpdateComment(conn *gorm.DB, actor *access.Actor, id uint, in CommentInput) (*models.Comment, error) {
	comment, err := GetComment(conn, id)
	if err != nil {
		return nil, err
	}

	if !access.CanEditComment(actor, comment.Task.Project, comment) {
		return nil, permissionDenied("you do not have permission to edit this comment")
	}

	errs := fieldErrors{}
	content := validateContent(errs, in.Content)
	if in.TaskID != 0 && in.TaskID != comment.TaskID {
		errs.add("task", "A comment cannot be moved to another task.")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Comment{}).Where("id = ?", id).Update("content", content).Error
	})
	if err != nil {
		return nil, translate(err, "comment")
	}

	return GetComment(conn, id)
}

func DeleteComment(conn *gorm.DB, actor *access.Actor, id uint) (*models.Comment, error) {
	comment, err := GetComment(conn, id)
	if err != nil {
		return nil, err
	}

	if !access.CanDeleteComment(actor, comment.Task.Project, comment) {
		return nil, permissionDenied("you do not have permission to delete this comment")
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return nil, translate(err, "comment")
	}

	return comment, nil
}
