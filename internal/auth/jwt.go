package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

var (
	jwtSecret  string
	accessTTL  = time.Hour
	refreshTTL = 7 * 24 * time.Hour

	ErrInvalidToken = errors.New("Invalid or expired token")
)

type Claims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// InitJWT must run before any token is issued or verified. Zero TTLs keep the defaults.
func InitJWT(secret string, access, refresh time.Duration) error {
	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	jwtSecret = secret

	if access > 0 {
		accessTTL = access
	}
	if refresh > 0 {
		refreshTTL = refresh
	}

	return nil
}

func AccessTTL() time.Duration {
	return accessTTL
}

func generate(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func GenerateJWT(userID uint, username string) (string, error) {
	return generate(userID, username, AccessToken, accessTTL)
}

func GenerateTokenPair(userID uint, username string) (TokenPair, error) {
	access, err := generate(userID, username, AccessToken, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := generate(userID, username, RefreshToken, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyJWT checks signature, expiry and the token_type claim.
func VerifyJWT(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != tokenType || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
