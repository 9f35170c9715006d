package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

var ProjectStatuses = []ProjectStatus{ProjectPending, ProjectInProgress, ProjectCompleted, ProjectCancelled}

func (s ProjectStatus) Valid() bool {
	for _, status := range ProjectStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ProjectOrder is the default listing order.
const ProjectOrder = "projects.name ASC, projects.id ASC"

type Project struct {
	BaseModel

	Name        string         `gorm:"size:200;not null;index"`
	Description string         `gorm:"type:text"`
	StartDate   datatypes.Date `gorm:"not null"`
	EndDate     *datatypes.Date
	Status      ProjectStatus `gorm:"size:20;not null;default:pending"`
	CreatorID   *uint         `gorm:"index"`

	// Relationships
	Creator     *User               `gorm:"foreignKey:CreatorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Memberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tasks       []Task              `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = ProjectPending
	}
	return nil
}

// Collaborators returns the users loaded through Memberships.User.
func (p *Project) Collaborators() []User {
	users := make([]User, 0, len(p.Memberships))
	for _, membership := range p.Memberships {
		if membership.User.ID != 0 {
			users = append(users, membership.User)
		}
	}
	return users
}

// HasCollaborator requires Memberships to be loaded.
func (p *Project) HasCollaborator(userID uint) bool {
	for _, membership := range p.Memberships {
		if membership.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Project) CreatedBy(userID uint) bool {
	return p.CreatorID != nil && *p.CreatorID == userID
}
