package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/projectdesk/projectdesk/internal/utils"
)

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=administrator collaborator viewer"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,max=150"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Role     *string `json:"role" binding:"omitempty,oneof=administrator collaborator viewer"`
}

var userReadOnly = []string{"id", "created_at", "updated_at"}

// RequireAdministrator guards the user management API.
func RequireAdministrator() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !access.CanManageUsers(utils.GetActor(ctx)) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrator role required"})
			return
		}
		ctx.Next()
	}
}

func ListUsers(ctx *gin.Context) {
	users, err := services.ListUsers(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponses(users))
}

func ListUserRows(ctx *gin.Context) {
	rows, err := services.ListUserRows(db.DB)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetUser(ctx *gin.Context) {
	id, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := services.GetUser(db.DB, id)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

func CreateUser(ctx *gin.Context) {
	var body CreateUserRequest

	if !bindWritable(ctx, &body, userReadOnly...) {
		return
	}

	user, err := services.AdminCreateUser(db.DB, utils.GetActor(ctx), services.UserInput{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func UpdateUser(ctx *gin.Context) {
	id, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateUserRequest

	if !bindWritable(ctx, &body, userReadOnly...) {
		return
	}

	user, err := services.UpdateUser(db.DB, utils.GetActor(ctx), id, services.UserUpdate{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

func DeleteUser(ctx *gin.Context) {
	id, err := utils.GetID(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteUser(db.DB, utils.GetActor(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
