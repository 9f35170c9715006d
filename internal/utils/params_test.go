package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/internal/middleware"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		value   string
		want    uint
		wantErr bool
	}{
		{value: "42", want: 42},
		{value: "", wantErr: true},
		{value: "0", wantErr: true},
		{value: "-3", wantErr: true},
		{value: "abc", wantErr: true},
	}

	for _, tt := range tests {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Params = gin.Params{{Key: "id", Value: tt.value}}

		got, err := GetID(ctx, "id")
		if tt.wantErr {
			assert.Error(t, err, "value %q", tt.value)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs([]string{"3", "", "7"})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 7}, ids)

	_, err = ParseIDs([]string{"x"})
	assert.Error(t, err)

	id, err := ParseOptionalID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = ParseOptionalID("9")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, uint(9), *id)
}

func TestGetActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetActor(ctx))

	ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{ID: 5, Username: "bob", Role: models.RoleCollaborator})

	actor := GetActor(ctx)
	require.NotNil(t, actor)
	assert.Equal(t, uint(5), actor.ID)
	assert.Equal(t, models.RoleCollaborator, actor.Role)
}
