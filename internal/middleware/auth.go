package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/types"
)

type AuthenticatedUser struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

func (u AuthenticatedUser) Actor() *access.Actor {
	return &access.Actor{ID: u.ID, Role: u.Role}
}

// loadUser resolves an access token to the stored user. The role is read from
// the database so role changes apply to tokens already issued.
func loadUser(tokenString string) (*models.User, error) {
	claims, err := auth.VerifyJWT(tokenString, auth.AccessToken)

	if err != nil {
		return nil, err
	}

	var user models.User

	if err := db.DB.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func setUser(ctx *gin.Context, user *models.User) {
	ctx.Set(types.ContextUserKey, AuthenticatedUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}

// AuthMiddleware guards the JSON API. The bearer header wins; the session
// cookie is accepted so the web interface can call the API.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var tokenString string

		if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)

			if len(parts) != 2 || parts[0] != "Bearer" {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
				return
			}

			tokenString = parts[1]
		} else if cookie, err := ctx.Cookie(types.TokenCookie); err == nil {
			tokenString = cookie
		}

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		user, err := loadUser(tokenString)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setUser(ctx, user)
		ctx.Next()
	}
}

// OptionalSession sets the user when a valid session cookie is present.
func OptionalSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if cookie, err := ctx.Cookie(types.TokenCookie); err == nil && cookie != "" {
			if user, err := loadUser(cookie); err == nil {
				setUser(ctx, user)
			}
		}

		ctx.Next()
	}
}

// SessionMiddleware guards the web interface: anonymous visitors go to the
// login page and come back afterwards.
func SessionMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if cookie, err := ctx.Cookie(types.TokenCookie); err == nil && cookie != "" {
			if user, err := loadUser(cookie); err == nil {
				setUser(ctx, user)
				ctx.Next()
				return
			}
		}

		ctx.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(ctx.Request.URL.RequestURI()))
		ctx.Abort()
	}
}
