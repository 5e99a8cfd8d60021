package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid covers bad signatures, malformed tokens, and expiry.
var ErrTokenInvalid = errors.New("invalid or expired token")

// TokenClaims are the claims carried by both access and refresh tokens. The
// two token classes are separated by signing secret, not by a claim.
type TokenClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the access/refresh token pair. It holds no
// mutable state; everything comes from configuration at construction.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must be configured")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}, nil
}

// IssuePair mints a fresh access/refresh token pair for a user.
func (s *TokenService) IssuePair(userID string) (accessToken, refreshToken string, err error) {
	now := time.Now()

	accessToken, err = sign(userID, s.accessSecret, now, s.accessExpiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err = sign(userID, s.refreshSecret, now, s.refreshExpiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// VerifyAccess verifies an access token and returns its claims.
func (s *TokenService) VerifyAccess(tokenString string) (*TokenClaims, error) {
	return verify(tokenString, s.accessSecret)
}

// VerifyRefresh verifies a refresh token and returns its claims. A valid
// signature does not mean the token is still current; the session manager
// additionally checks it against the stored session.
func (s *TokenService) VerifyRefresh(tokenString string) (*TokenClaims, error) {
	return verify(tokenString, s.refreshSecret)
}

func sign(userID string, secret []byte, now time.Time, expiry time.Duration) (string, error) {
	claims := &TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verify(tokenString string, secret []byte) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
