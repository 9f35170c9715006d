package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/projectdesk/projectdesk/internal/utils"
)

type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateMeRequest struct {
	Email           string `json:"email" binding:"omitempty,email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"omitempty,min=8"`
}

var (
	Domain       string
	CookieSecure bool
)

// ConfigureCookies sets the attributes of the session cookie.
func ConfigureCookies(domain string, secure bool) {
	Domain = domain
	CookieSecure = secure
}

func sameSite() http.SameSite {
	// Browsers drop SameSite=None cookies that are not Secure.
	if CookieSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func SetSessionCookie(ctx *gin.Context, token string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.TokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   int(auth.AccessTTL().Seconds()),
		Secure:   CookieSecure,
		HttpOnly: true,
		SameSite: sameSite(),
	})
}

func ClearSessionCookie(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.TokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   Domain,
		MaxAge:   -1,
		Secure:   CookieSecure,
		HttpOnly: true,
		SameSite: sameSite(),
	})
}

// issueSession sets the cookie and answers with the user and a token pair.
func issueSession(ctx *gin.Context, status int, user *models.User) {
	pair, err := auth.GenerateTokenPair(user.ID, user.Username)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	SetSessionCookie(ctx, pair.Access)

	ctx.JSON(status, gin.H{
		"user":    types.NewUserResponse(user),
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

func RegisterUser(ctx *gin.Context) {
	var body RegisterUserRequest

	if !bindWritable(ctx, &body, "role") {
		return
	}

	user, err := services.RegisterUser(db.DB, services.UserInput{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	issueSession(ctx, http.StatusCreated, user)
}

func LoginUser(ctx *gin.Context) {
	var body LoginUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := services.Authenticate(db.DB, body.Username, body.Password)

	if errors.Is(err, services.ErrInvalidCredentials) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}

	if err != nil {
		respondError(ctx, err)
		return
	}

	issueSession(ctx, http.StatusOK, user)
}

func LogoutUser(ctx *gin.Context) {
	ClearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       currentUser.ID,
			Username: currentUser.Username,
			Email:    currentUser.Email,
			Role:     currentUser.Role,
		},
	})
}

// UpdateMe changes the caller's own email or password. The role is not
// self-service.
func UpdateMe(ctx *gin.Context) {
	var body UpdateMeRequest

	if !bindWritable(ctx, &body, "role", "username") {
		return
	}

	user, err := services.UpdateProfile(db.DB, utils.GetActor(ctx), services.ProfileUpdate{
		Email:           body.Email,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    types.NewUserResponse(user),
	})
}

// DeleteMe removes the caller's account after re-checking the password.
func DeleteMe(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body struct {
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Password is required for account deletion"})
		return
	}

	if _, err := services.Authenticate(db.DB, currentUser.Username, body.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect password"})
			return
		}
		respondError(ctx, err)
		return
	}

	if err := services.DeleteUser(db.DB, currentUser.Actor(), currentUser.ID); err != nil {
		respondError(ctx, err)
		return
	}

	ClearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
