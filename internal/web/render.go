package web

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/handlers"
	"github.com/projectdesk/projectdesk/internal/middleware"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/projectdesk/projectdesk/internal/utils"
)

type flash struct {
	Kind    string
	Message string
}

func currentUser(ctx *gin.Context) *middleware.AuthenticatedUser {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		return nil
	}
	return &user
}

func setFlash(ctx *gin.Context, kind, message string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.FlashCookie,
		Value:    url.QueryEscape(kind + ":" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending notice, if any, and clears it.
func popFlash(ctx *gin.Context) *flash {
	value, err := ctx.Cookie(types.FlashCookie)
	if err != nil || value == "" {
		return nil
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.FlashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	kind, message, found := strings.Cut(value, ":")
	if !found {
		return nil
	}

	return &flash{Kind: kind, Message: message}
}

func render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}

	data["User"] = currentUser(ctx)
	data["Flash"] = popFlash(ctx)

	ctx.HTML(status, name, data)
}

func redirect(ctx *gin.Context, target string) {
	ctx.Redirect(http.StatusFound, target)
}

// denied sends the visitor back to a page they can see, with a notice.
func denied(ctx *gin.Context, target string, err error) {
	message := "You do not have permission to perform this action."
	if err != nil {
		message = strings.TrimPrefix(err.Error(), services.ErrPermission.Error()+": ")
		message = strings.ToUpper(message[:1]) + message[1:] + "."
	}

	setFlash(ctx, "error", message)
	redirect(ctx, target)
}

func notFound(ctx *gin.Context) {
	render(ctx, http.StatusNotFound, "error.html", gin.H{
		"Title":   "Not found",
		"Heading": "Not found",
		"Message": "The page you requested does not exist.",
	})
}

// handleError covers the outcomes shared by every page; validation errors
// are left to the caller, which re-renders its form.
func handleError(ctx *gin.Context, err error, deniedTarget string) {
	if integrityErr, ok := services.IsIntegrity(err); ok {
		ctx.JSON(http.StatusConflict, gin.H{"msg": integrityErr.Message})
		return
	}

	switch {
	case errors.Is(err, services.ErrPermission):
		denied(ctx, deniedTarget, err)
	case errors.Is(err, services.ErrNotFound):
		notFound(ctx)
	default:
		log.Printf("Unexpected error on %s %s: %v", ctx.Request.Method, ctx.FullPath(), err)
		render(ctx, http.StatusInternalServerError, "error.html", gin.H{
			"Title":   "Error",
			"Heading": "Something went wrong",
			"Message": "The request could not be completed. Please try again.",
		})
	}
}

func pathID(ctx *gin.Context) (uint, bool) {
	id, err := utils.GetID(ctx, "id")
	if err != nil {
		notFound(ctx)
		return 0, false
	}
	return id, true
}

// RequireRole keeps a page to actors passing check.
func RequireRole(check func(*access.Actor) bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !check(utils.GetActor(ctx)) {
			denied(ctx, "/home", nil)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func login(ctx *gin.Context, userID uint, username string) error {
	token, err := auth.GenerateJWT(userID, username)
	if err != nil {
		return err
	}

	handlers.SetSessionCookie(ctx, token)
	return nil
}
