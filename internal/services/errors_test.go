package services

import (
	"testing"

	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate_DuplicateKey(t *testing.T) {
	conn := testutil.NewDB(t)
	testutil.CreateUser(t, conn, "ada", models.RoleViewer)

	err := translate(conn.Create(&models.User{Username: "ada", PasswordHash: "x", Role: models.RoleViewer}).Error, "user")
	integrityErr, ok := IsIntegrity(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "user already exists", integrityErr.Message)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestTranslate_MissingParent(t *testing.T) {
	conn := testutil.NewDB(t)

	err := translate(conn.Create(&models.Comment{TaskID: 999, Content: "orphan"}).Error, "comment")
	integrityErr, ok := IsIntegrity(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "cross reference: comment references a missing or still-referenced row", integrityErr.Message)
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestTranslate_PassesThrough(t *testing.T) {
	assert.NoError(t, translate(nil, "user"))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound, "user"), ErrNotFound)

	_, ok := IsIntegrity(translate(gorm.ErrInvalidData, "user"))
	assert.False(t, ok)
}
