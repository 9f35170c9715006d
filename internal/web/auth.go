package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/handlers"
	"github.com/projectdesk/projectdesk/internal/services"
)

type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

type RegisterForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	PasswordConfirm string `form:"password_confirm"`
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/home"
	}
	return next
}

func LoginPage(ctx *gin.Context) {
	if currentUser(ctx) != nil {
		redirect(ctx, "/home")
		return
	}

	render(ctx, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Next":  ctx.Query("next"),
	})
}

func Login(ctx *gin.Context) {
	var form LoginForm

	if err := ctx.ShouldBind(&form); err != nil {
		redirect(ctx, "/login")
		return
	}

	user, err := services.Authenticate(db.DB, form.Username, form.Password)

	if errors.Is(err, services.ErrInvalidCredentials) {
		render(ctx, http.StatusUnprocessableEntity, "login.html", gin.H{
			"Title":    "Log in",
			"Next":     form.Next,
			"Username": form.Username,
			"Error":    "Please enter a correct username and password.",
		})
		return
	}

	if err != nil {
		handleError(ctx, err, "/login")
		return
	}

	if err := login(ctx, user.ID, user.Username); err != nil {
		handleError(ctx, err, "/login")
		return
	}

	redirect(ctx, safeNext(form.Next))
}

func Logout(ctx *gin.Context) {
	handlers.ClearSessionCookie(ctx)
	setFlash(ctx, "success", "You have been logged out.")
	redirect(ctx, "/login")
}

func RegisterPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "register.html", gin.H{
		"Title": "Register",
		"Form":  RegisterForm{},
	})
}

// Register creates a viewer account and signs it in.
func Register(ctx *gin.Context) {
	var form RegisterForm

	if err := ctx.ShouldBind(&form); err != nil {
		redirect(ctx, "/register")
		return
	}

	rerender := func(fields map[string]string) {
		render(ctx, http.StatusUnprocessableEntity, "register.html", gin.H{
			"Title":  "Register",
			"Form":   RegisterForm{Username: form.Username, Email: form.Email},
			"Errors": fields,
		})
	}

	if form.Password != form.PasswordConfirm {
		rerender(map[string]string{"password_confirm": "The two password fields didn't match."})
		return
	}

	user, err := services.RegisterUser(db.DB, services.UserInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})

	if validationErr, ok := services.IsValidation(err); ok {
		rerender(validationErr.Fields)
		return
	}

	if err != nil {
		handleError(ctx, err, "/register")
		return
	}

	log.Printf("Registered user %s", user.Username)

	if err := login(ctx, user.ID, user.Username); err != nil {
		handleError(ctx, err, "/login")
		return
	}

	setFlash(ctx, "success", "Welcome, "+user.Username+"!")
	redirect(ctx, "/home")
}
