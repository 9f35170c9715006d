package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJWT_RequiresSecret(t *testing.T) {
	assert.Error(t, InitJWT("", 0, 0))
}

func TestTokenPair_RoundTrip(t *testing.T) {
	require.NoError(t, InitJWT("test-secret", time.Minute, time.Hour))

	pair, err := GenerateTokenPair(42, "ada")
	require.NoError(t, err)

	claims, err := VerifyJWT(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.NotEmpty(t, claims.ID)

	claims, err = VerifyJWT(pair.Refresh, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestVerifyJWT_RejectsWrongType(t *testing.T) {
	require.NoError(t, InitJWT("test-secret", time.Minute, time.Hour))

	pair, err := GenerateTokenPair(1, "ada")
	require.NoError(t, err)

	_, err = VerifyJWT(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyJWT(pair.Access, RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyJWT_RejectsForeignSignature(t *testing.T) {
	require.NoError(t, InitJWT("first-secret", time.Minute, time.Hour))
	token, err := GenerateJWT(1, "ada")
	require.NoError(t, err)

	require.NoError(t, InitJWT("second-secret", time.Minute, time.Hour))
	_, err = VerifyJWT(token, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyJWT("not-a-token", AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}
