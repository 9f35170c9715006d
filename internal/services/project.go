package services

import (
	"strings"
	"time"

	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectInput struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Status      string
}

type ProjectRow struct {
	ID     uint                 `json:"id"`
	Name   string               `json:"name"`
	Status models.ProjectStatus `json:"status"`
}

type validProject struct {
	name        string
	description string
	startDate   datatypes.Date
	endDate     *datatypes.Date
	status      models.ProjectStatus
}

func validateProject(in ProjectInput) (*validProject, error) {
	errs := fieldErrors{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		errs.add("name", "This field is required.")
	case len(name) > 200:
		errs.add("name", "Ensure this field has at most 200 characters.")
	}

	var startDate datatypes.Date
	if strings.TrimSpace(in.StartDate) == "" {
		errs.add("start_date", "This field is required.")
	} else if parsed := parseDate(errs, "start_date", in.StartDate); parsed != nil {
		startDate = *parsed
	}

	endDate := parseDate(errs, "end_date", in.EndDate)
	if endDate != nil && time.Time(*endDate).Before(time.Time(startDate)) {
		errs.add("end_date", "End date cannot be earlier than start date.")
	}

	status := models.ProjectStatus(in.Status)
	if status == "" {
		status = models.ProjectPending
	}
	if !status.Valid() {
		errs.add("status", "Select a valid choice. "+in.Status+" is not one of the available choices.")
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	return &validProject{
		name:        name,
		description: strings.TrimSpace(in.Description),
		startDate:   startDate,
		endDate:     endDate,
		status:      status,
	}, nil
}

func ListProjects(conn *gorm.DB) ([]models.Project, error) {
	var projects []models.Project

	err := conn.Preload("Creator").
		Order(models.ProjectOrder).
		Find(&projects).Error

	return projects, err
}

// ListProjectTrees is ListProjects with collaborators, tasks and comments loaded.
func ListProjectTrees(conn *gorm.DB) ([]models.Project, error) {
	var projects []models.Project

	err := projectTree(conn).
		Order(models.ProjectOrder).
		Find(&projects).Error

	return projects, err
}

func ListProjectRows(conn *gorm.DB) ([]ProjectRow, error) {
	rows := []ProjectRow{}

	err := conn.Model(&models.Project{}).
		Select("id, name, status").
		Order(models.ProjectOrder).
		Scan(&rows).Error

	return rows, err
}

// GetProject loads the project with its creator and collaborator set.
func GetProject(conn *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project

	err := conn.Preload("Creator").
		Preload("Memberships.User").
		First(&project, id).Error

	if err != nil {
		return nil, translate(err, "project")
	}

	return &project, nil
}

func projectTree(conn *gorm.DB) *gorm.DB {
	return conn.Preload("Creator").
		Preload("Memberships.User").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.TaskOrderInProject)
		}).
		Preload("Tasks.AssignedTo").
		Preload("Tasks.CreatedBy").
		Preload("Tasks.Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.CommentOrder)
		}).
		Preload("Tasks.Comments.Author")
}

// GetProjectTree additionally loads tasks and their comments.
func GetProjectTree(conn *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project

	if err := projectTree(conn).First(&project, id).Error; err != nil {
		return nil, translate(err, "project")
	}

	return &project, nil
}

// CreateProject stamps the acting user as creator.
func CreateProject(conn *gorm.DB, actor *access.Actor, in ProjectInput) (*models.Project, error) {
	if !access.CanCreateProject(actor) {
		return nil, permissionDenied("only collaborators and administrators can create projects")
	}

	valid, err := validateProject(in)
	if err != nil {
		return nil, err
	}

	creatorID := actor.ID
	project := models.Project{
		Name:        valid.name,
		Description: valid.description,
		StartDate:   valid.startDate,
		EndDate:     valid.endDate,
		Status:      valid.status,
		CreatorID:   &creatorID,
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&project).Error
	})
	if err != nil {
		return nil, translate(err, "project")
	}

	return GetProject(conn, project.ID)
}

func UpdateProject(conn *gorm.DB, actor *access.Actor, id uint, in ProjectInput) (*models.Project, error) {
	project, err := GetProject(conn, id)
	if err != nil {
		return nil, err
	}

	if !access.CanEditProject(actor, project) {
		return nil, permissionDenied("you do not have permission to edit this project")
	}

	valid, err := validateProject(in)
	if err != nil {
		return nil, err
	}

	project.Name = valid.name
	project.Description = valid.description
	project.StartDate = valid.startDate
	project.EndDate = valid.endDate
	project.Status = valid.status

	err = conn.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Save(project).Error
	})
	if err != nil {
		return nil, translate(err, "project")
	}

	return GetProject(conn, project.ID)
}

// DeleteProject removes the project together with its tasks, their comments
// and the collaborator memberships, in one transaction.
func DeleteProject(conn *gorm.DB, actor *access.Actor, id uint) error {
	if !access.CanDeleteProject(actor) {
		return permissionDenied("only administrators can delete projects")
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			return translate(err, "project")
		}

		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return translate(err, "comment")
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return translate(err, "task")
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&project).Error; err != nil {
			return translate(err, "project")
		}

		return nil
	})
}

// SetCollaborators replaces the whole collaborator set of a project.
func SetCollaborators(conn *gorm.DB, actor *access.Actor, projectID uint, userIDs []uint) (*models.Project, error) {
	project, err := GetProject(conn, projectID)
	if err != nil {
		return nil, err
	}

	if !access.CanManageCollaborators(actor, project) {
		return nil, permissionDenied("you do not have permission to assign collaborators to this project")
	}

	unique := make([]uint, 0, len(userIDs))
	seen := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	if len(unique) > 0 {
		var found int64
		if err := conn.Model(&models.User{}).Where("id IN ?", unique).Count(&found).Error; err != nil {
			return nil, err
		}
		if int(found) != len(unique) {
			return nil, NewValidationError("collaborators", "One or more selected users do not exist.")
		}
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		if len(unique) > 0 {
			memberships := make([]models.ProjectMembership, 0, len(unique))
			for _, userID := range unique {
				memberships = append(memberships, models.ProjectMembership{ProjectID: projectID, UserID: userID})
			}
			if err := tx.Omit(clause.Associations).Create(&memberships).Error; err != nil {
				return translate(err, "membership")
			}
		}

		return tx.Model(&models.Project{}).Where("id = ?", projectID).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}

	return GetProject(conn, projectID)
}
