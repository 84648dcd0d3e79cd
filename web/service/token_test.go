package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestConfirmationTokenRoundTrip(t *testing.T) {
	t.Setenv("RAGTIME_SECRET", "test-secret")

	tokenService := TokenService{}
	token, err := tokenService.GenerateConfirmationToken(7)
	assert.NoError(t, err)

	assert.True(t, tokenService.VerifyConfirmationToken(token, 7))
	// bound to the user it was issued for
	assert.False(t, tokenService.VerifyConfirmationToken(token, 8))
	assert.False(t, tokenService.VerifyConfirmationToken("garbage", 7))
}

func TestTokenPurposeIsolation(t *testing.T) {
	t.Setenv("RAGTIME_SECRET", "test-secret")

	tokenService := TokenService{}
	confirm, err := tokenService.GenerateConfirmationToken(7)
	assert.NoError(t, err)
	auth, err := tokenService.GenerateAuthToken(7)
	assert.NoError(t, err)

	// a confirmation token is not a bearer token and vice versa
	_, ok := tokenService.VerifyAuthToken(confirm)
	assert.False(t, ok)
	assert.False(t, tokenService.VerifyConfirmationToken(auth, 7))

	id, ok := tokenService.VerifyAuthToken(auth)
	assert.True(t, ok)
	assert.Equal(t, 7, id)
}

func TestTokenWrongSignature(t *testing.T) {
	t.Setenv("RAGTIME_SECRET", "test-secret")

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserId:  7,
		Purpose: purposeAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("attacker-key"))
	assert.NoError(t, err)

	tokenService := TokenService{}
	_, ok := tokenService.VerifyAuthToken(signed)
	assert.False(t, ok)
}

func TestExpiredToken(t *testing.T) {
	t.Setenv("RAGTIME_SECRET", "test-secret")

	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserId:  7,
		Purpose: purposeAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := stale.SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	tokenService := TokenService{}
	_, ok := tokenService.VerifyAuthToken(signed)
	assert.False(t, ok)
}
