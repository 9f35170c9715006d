package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskCompleted}

func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// TaskOrder needs projects joined on tasks.project_id.
const TaskOrder = "projects.name ASC, " + TaskOrderInProject

// TaskOrderInProject puts tasks without a due date last on every driver.
const TaskOrderInProject = "tasks.due_date IS NULL, tasks.due_date ASC, tasks.name ASC, tasks.id ASC"

type Task struct {
	BaseModel

	ProjectID    uint       `gorm:"not null;index"`
	Name         string     `gorm:"size:255;not null"`
	Description  string     `gorm:"type:text"`
	Status       TaskStatus `gorm:"size:20;not null;default:pending"`
	DueDate      *datatypes.Date
	AssignedToID *uint `gorm:"index"`
	CreatedByID  *uint `gorm:"index"`

	// Relationships
	Project    *Project  `gorm:"foreignKey:ProjectID"`
	AssignedTo *User     `gorm:"foreignKey:AssignedToID"`
	CreatedBy  *User     `gorm:"foreignKey:CreatedByID"`
	Comments   []Comment `gorm:"foreignKey:TaskID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TaskPending
	}
	return nil
}
