package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/services"
)

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// ObtainToken exchanges credentials for an access and refresh token pair.
func ObtainToken(ctx *gin.Context) {
	var body LoginUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := services.Authenticate(db.DB, body.Username, body.Password)

	if errors.Is(err, services.ErrInvalidCredentials) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "No active account found with the given credentials"})
		return
	}

	if err != nil {
		respondError(ctx, err)
		return
	}

	pair, err := auth.GenerateTokenPair(user.ID, user.Username)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, pair)
}

func RefreshToken(ctx *gin.Context) {
	var body RefreshTokenRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	claims, err := auth.VerifyJWT(body.Refresh, auth.RefreshToken)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return
	}

	// The account may have been removed since the refresh token was issued.
	user, err := services.GetUser(db.DB, claims.UserID)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return
	}

	access, err := auth.GenerateJWT(user.ID, user.Username)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"access": access})
}

// VerifyToken accepts either token type.
func VerifyToken(ctx *gin.Context) {
	var body VerifyTokenRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, err := auth.VerifyJWT(body.Token, auth.AccessToken); err == nil {
		ctx.JSON(http.StatusOK, gin.H{})
		return
	}

	if _, err := auth.VerifyJWT(body.Token, auth.RefreshToken); err == nil {
		ctx.JSON(http.StatusOK, gin.H{})
		return
	}

	ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
}
