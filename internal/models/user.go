package models

import "gorm.io/gorm"

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleCollaborator  Role = "collaborator"
	RoleViewer        Role = "viewer"
)

var Roles = []Role{RoleAdministrator, RoleCollaborator, RoleViewer}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	BaseModel

	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Email        string `gorm:"size:254"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"size:20;not null;default:viewer"`

	// Relationships
	CreatedProjects    []Project           `gorm:"foreignKey:CreatorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	ProjectMemberships []ProjectMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AssignedTasks      []Task              `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	CreatedTasks       []Task              `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Comments           []Comment           `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleViewer
	}
	return nil
}
