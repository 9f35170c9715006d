package models

// ProjectMembership is the collaborator set of a project.
type ProjectMembership struct {
	BaseModel

	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_project_user;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID"`
}
