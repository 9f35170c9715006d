package types

import (
	"time"

	"github.com/projectdesk/projectdesk/internal/models"
	"gorm.io/datatypes"
)

type UserResponse struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

type ProjectResponse struct {
	ID            uint                 `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	StartDate     string               `json:"start_date"`
	EndDate       *string              `json:"end_date"`
	Status        models.ProjectStatus `json:"status"`
	Creator       *UserResponse        `json:"creator"`
	Collaborators []UserResponse       `json:"collaborators"`
	Tasks         []TaskResponse       `json:"tasks"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type TaskResponse struct {
	ID          uint              `json:"id"`
	ProjectID   uint              `json:"project"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *string           `json:"due_date"`
	AssignedTo  *UserResponse     `json:"assigned_to"`
	CreatedBy   *UserResponse     `json:"created_by"`
	Comments    []CommentResponse `json:"comments"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type CommentResponse struct {
	ID        uint          `json:"id"`
	TaskID    uint          `json:"task"`
	Author    *UserResponse `json:"author"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func formatDate(date *datatypes.Date) *string {
	if date == nil {
		return nil
	}
	formatted := time.Time(*date).Format("2006-01-02")
	return &formatted
}

func NewUserResponse(user *models.User) *UserResponse {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *NewUserResponse(&users[i]))
	}
	return responses
}

func NewCommentResponse(comment *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Author:    NewUserResponse(comment.Author),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func NewCommentResponses(comments []models.Comment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, NewCommentResponse(&comments[i]))
	}
	return responses
}

func NewTaskResponse(task *models.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     formatDate(task.DueDate),
		AssignedTo:  NewUserResponse(task.AssignedTo),
		CreatedBy:   NewUserResponse(task.CreatedBy),
		Comments:    NewCommentResponses(task.Comments),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func NewTaskResponses(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, NewTaskResponse(&tasks[i]))
	}
	return responses
}

func NewProjectResponse(project *models.Project) ProjectResponse {
	startDate := project.StartDate
	return ProjectResponse{
		ID:            project.ID,
		Name:          project.Name,
		Description:   project.Description,
		StartDate:     *formatDate(&startDate),
		EndDate:       formatDate(project.EndDate),
		Status:        project.Status,
		Creator:       NewUserResponse(project.Creator),
		Collaborators: NewUserResponses(project.Collaborators()),
		Tasks:         NewTaskResponses(project.Tasks),
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}
}

func NewProjectResponses(projects []models.Project) []ProjectResponse {
	responses := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, NewProjectResponse(&projects[i]))
	}
	return responses
}
