// Package testutil builds throwaway sqlite databases for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const Password = "password123"

// NewDB returns a migrated in-memory database closed at test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return conn
}

// CreateUser inserts a user whose password is Password.
func CreateUser(t *testing.T, conn *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, conn.Create(user).Error)

	return user
}

func Actor(user *models.User) *access.Actor {
	return &access.Actor{ID: user.ID, Role: user.Role}
}

func Date(value string) datatypes.Date {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return datatypes.Date(parsed)
}

// CreateProject inserts a project directly, bypassing permission checks.
func CreateProject(t *testing.T, conn *gorm.DB, name string, creator *models.User, collaborators ...*models.User) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:      name,
		StartDate: Date("2024-01-01"),
	}
	if creator != nil {
		project.CreatorID = &creator.ID
	}
	require.NoError(t, conn.Create(project).Error)

	for _, user := range collaborators {
		require.NoError(t, conn.Create(&models.ProjectMembership{ProjectID: project.ID, UserID: user.ID}).Error)
	}

	return project
}

func CreateTask(t *testing.T, conn *gorm.DB, project *models.Project, name string, creator *models.User) *models.Task {
	t.Helper()

	task := &models.Task{ProjectID: project.ID, Name: name}
	if creator != nil {
		task.CreatedByID = &creator.ID
	}
	require.NoError(t, conn.Create(task).Error)

	return task
}

func CreateComment(t *testing.T, conn *gorm.DB, task *models.Task, author *models.User, content string) *models.Comment {
	t.Helper()

	comment := &models.Comment{TaskID: task.ID, Content: content}
	if author != nil {
		comment.AuthorID = &author.ID
	}
	require.NoError(t, conn.Create(comment).Error)

	return comment
}
