package services

import (
	"errors"
	"strings"

	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskInput struct {
	ProjectID    uint
	Name         string
	Description  string
	Status       string
	DueDate      string
	AssignedToID *uint
}

type TaskRow struct {
	ID      uint              `json:"id"`
	Project string            `json:"project"`
	Status  models.TaskStatus `json:"status"`
}

type validTask struct {
	project      *models.Project
	name         string
	description  string
	status       models.TaskStatus
	dueDate      *datatypes.Date
	assignedToID *uint
}

func optionalID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	value := *id
	return &value
}

// loadProjectForWrite resolves the project reference of a task payload.
func loadProjectForWrite(conn *gorm.DB, errs fieldErrors, projectID uint) (*models.Project, error) {
	if projectID == 0 {
		errs.add("project", "This field is required.")
		return nil, nil
	}

	project, err := GetProject(conn, projectID)
	if errors.Is(err, ErrNotFound) {
		errs.add("project", "Select a valid choice. That project does not exist.")
		return nil, nil
	}

	return project, err
}

func userExists(conn *gorm.DB, id uint) (bool, error) {
	var count int64
	err := conn.Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func validateTask(conn *gorm.DB, in TaskInput) (*validTask, error) {
	errs := fieldErrors{}

	project, err := loadProjectForWrite(conn, errs, in.ProjectID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		errs.add("name", "This field is required.")
	case len(name) > 255:
		errs.add("name", "Ensure this field has at most 255 characters.")
	}

	status := models.TaskStatus(in.Status)
	if status == "" {
		status = models.TaskPending
	}
	if !status.Valid() {
		errs.add("status", "Select a valid choice. "+in.Status+" is not one of the available choices.")
	}

	dueDate := parseDate(errs, "due_date", in.DueDate)

	assignedToID := optionalID(in.AssignedToID)
	if assignedToID != nil {
		exists, err := userExists(conn, *assignedToID)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs.add("assigned_to", "Select a valid choice. That user does not exist.")
		}
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	return &validTask{
		project:      project,
		name:         name,
		description:  strings.TrimSpace(in.Description),
		status:       status,
		dueDate:      dueDate,
		assignedToID: assignedToID,
	}, nil
}

func tasksInOrder(conn *gorm.DB) *gorm.DB {
	return conn.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Order(models.TaskOrder)
}

func ListTasks(conn *gorm.DB) ([]models.Task, error) {
	var tasks []models.Task

	err := tasksInOrder(conn).
		Select("tasks.*").
		Preload("Project").
		Preload("AssignedTo").
		Preload("CreatedBy").
		Find(&tasks).Error

	return tasks, err
}

func ListTaskRows(conn *gorm.DB) ([]TaskRow, error) {
	rows := []TaskRow{}

	err := tasksInOrder(conn).
		Select("tasks.id AS id, projects.name AS project, tasks.status AS status").
		Scan(&rows).Error

	return rows, err
}

// GetTask loads the task with its project (and collaborator set), people and comments.
func GetTask(conn *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task

	err := conn.Preload("Project").
		Preload("Project.Memberships").
		Preload("AssignedTo").
		Preload("CreatedBy").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.CommentOrder)
		}).
		Preload("Comments.Author").
		First(&task, id).Error

	if err != nil {
		return nil, translate(err, "task")
	}

	return &task, nil
}

// CreateTask stamps the acting user as creator. Writers must belong to the project.
func CreateTask(conn *gorm.DB, actor *access.Actor, in TaskInput) (*models.Task, error) {
	if !access.IsCollaboratorOrAdministrator(actor) {
		return nil, permissionDenied("only collaborators and administrators can create tasks")
	}

	valid, err := validateTask(conn, in)
	if err != nil {
		return nil, err
	}

	if !access.CanWriteInProject(actor, valid.project) {
		return nil, permissionDenied("you are not a member of this project")
	}

	creatorID := actor.ID
	task := models.Task{
		ProjectID:    valid.project.ID,
		Name:         valid.name,
		Description:  valid.description,
		Status:       valid.status,
		DueDate:      valid.dueDate,
		AssignedToID: valid.assignedToID,
		CreatedByID:  &creatorID,
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&task).Error
	})
	if err != nil {
		return nil, translate(err, "task")
	}

	return GetTask(conn, task.ID)
}

// UpdateTask requires write access to the current project and, when the task
// moves, to the destination project as well.
func UpdateTask(conn *gorm.DB, actor *access.Actor, id uint, in TaskInput) (*models.Task, error) {
	task, err := GetTask(conn, id)
	if err != nil {
		return nil, err
	}

	if !access.CanWriteInProject(actor, task.Project) {
		return nil, permissionDenied("you do not have permission to edit this task")
	}

	if in.ProjectID == 0 {
		in.ProjectID = task.ProjectID
	}

	valid, err := validateTask(conn, in)
	if err != nil {
		return nil, err
	}

	if valid.project.ID != task.ProjectID && !access.CanWriteInProject(actor, valid.project) {
		return nil, permissionDenied("you are not a member of the destination project")
	}

	task.ProjectID = valid.project.ID
	task.Name = valid.name
	task.Description = valid.description
	task.Status = valid.status
	task.DueDate = valid.dueDate
	task.AssignedToID = valid.assignedToID

	err = conn.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Save(task).Error
	})
	if err != nil {
		return nil, translate(err, "task")
	}

	return GetTask(conn, task.ID)
}

// DeleteTask removes the task and its comments.
func DeleteTask(conn *gorm.DB, actor *access.Actor, id uint) (*models.Task, error) {
	task, err := GetTask(conn, id)
	if err != nil {
		return nil, err
	}

	if !access.CanDeleteTask(actor, task.Project) {
		return nil, permissionDenied("only administrators and the project creator can delete tasks")
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translate(err, "comment")
		}
		if err := tx.Delete(&models.Task{}, id).Error; err != nil {
			return translate(err, "task")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}
