package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/utils"
)

type RoleForm struct {
	Role string `form:"role"`
}

func RoleList(ctx *gin.Context) {
	users, err := services.ListUsers(db.DB)
	if err != nil {
		handleError(ctx, err, "/home")
		return
	}

	render(ctx, http.StatusOK, "role_list.html", gin.H{
		"Title": "Roles",
		"Users": users,
	})
}

// RoleRows is the reduced user projection: id, username, email.
func RoleRows(ctx *gin.Context) {
	rows, err := services.ListUserRows(db.DB)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func RoleDetail(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	user, err := services.GetUser(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/roles")
		return
	}

	render(ctx, http.StatusOK, "role_detail.html", gin.H{
		"Title":   user.Username,
		"Subject": user,
	})
}

func renderRoleForm(ctx *gin.Context, status int, user *models.User, form RoleForm, fields map[string]string) {
	render(ctx, status, "role_form.html", gin.H{
		"Title":   "Change role",
		"Subject": user,
		"Form":    form,
		"Roles":   models.Roles,
		"Errors":  fields,
	})
}

func RoleEdit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	user, err := services.GetUser(db.DB, id)
	if err != nil {
		handleError(ctx, err, "/roles")
		return
	}

	renderRoleForm(ctx, http.StatusOK, user, RoleForm{Role: string(user.Role)}, nil)
}

func RoleUpdate(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	target := fmt.Sprintf("/roles/%d", id)

	var form RoleForm
	if err := ctx.ShouldBind(&form); err != nil {
		redirect(ctx, target+"/edit")
		return
	}

	user, err := services.SetRole(db.DB, utils.GetActor(ctx), id, form.Role)
	if validationErr, ok := services.IsValidation(err); ok {
		current, getErr := services.GetUser(db.DB, id)
		if getErr != nil {
			handleError(ctx, getErr, "/roles")
			return
		}
		renderRoleForm(ctx, http.StatusUnprocessableEntity, current, form, validationErr.Fields)
		return
	}
	if err != nil {
		handleError(ctx, err, "/roles")
		return
	}

	setFlash(ctx, "success", fmt.Sprintf("%s is now %s.", user.Username, user.Role))
	redirect(ctx, target)
}
