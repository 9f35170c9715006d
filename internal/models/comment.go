package models

const CommentOrder = "comments.created_at ASC, comments.id ASC"

type Comment struct {
	BaseModel

	TaskID   uint   `gorm:"not null;index"`
	AuthorID *uint  `gorm:"index"`
	Content  string `gorm:"type:text;not null"`

	// Relationships
	Task   *Task `gorm:"foreignKey:TaskID"`
	Author *User `gorm:"foreignKey:AuthorID"`
}
