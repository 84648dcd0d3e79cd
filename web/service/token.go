package service

import (
	"time"

	"ragtime/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	purposeConfirm = "confirm"
	purposeAuth    = "auth"

	// ConfirmationTokenTTL bounds how long an account confirmation link
	// stays valid.
	ConfirmationTokenTTL = time.Hour
	// AuthTokenTTL bounds API bearer tokens.
	AuthTokenTTL = 24 * time.Hour
)

type tokenClaims struct {
	UserId  int    `json:"uid"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the signed tokens used for account
// confirmation and API authentication. All failure modes (malformed,
// expired, wrong purpose, wrong subject) collapse to a boolean failure.
type TokenService struct{}

func (s *TokenService) generate(userId int, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserId:  userId,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetSecret()))
}

func (s *TokenService) parse(tokenStr, purpose string) (int, bool) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(config.GetSecret()), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, false
	}
	if claims.Purpose != purpose || claims.UserId <= 0 {
		return 0, false
	}
	return claims.UserId, true
}

// GenerateConfirmationToken issues a token bound to the given user id.
func (s *TokenService) GenerateConfirmationToken(userId int) (string, error) {
	return s.generate(userId, purposeConfirm, ConfirmationTokenTTL)
}

// VerifyConfirmationToken checks the token and that it was issued for
// userId. A token for another account never confirms this one.
func (s *TokenService) VerifyConfirmationToken(tokenStr string, userId int) bool {
	id, ok := s.parse(tokenStr, purposeConfirm)
	return ok && id == userId
}

// GenerateAuthToken issues an API bearer token for the given user id.
func (s *TokenService) GenerateAuthToken(userId int) (string, error) {
	return s.generate(userId, purposeAuth, AuthTokenTTL)
}

// VerifyAuthToken returns the user id carried by a valid bearer token.
func (s *TokenService) VerifyAuthToken(tokenStr string) (int, bool) {
	return s.parse(tokenStr, purposeAuth)
}
