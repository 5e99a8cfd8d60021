package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokens(t *testing.T, accessExpiry, refreshExpiry time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService("access-secret", "refresh-secret", accessExpiry, refreshExpiry)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RequiresSecrets(t *testing.T) {
	_, err := NewTokenService("", "refresh", time.Minute, time.Hour)
	assert.Error(t, err)
	_, err = NewTokenService("access", "", time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestIssuePair_VerifiesWithMatchingSecret(t *testing.T) {
	svc := newTokens(t, time.Minute, time.Hour)

	access, refresh, err := svc.IssuePair("user-123")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	accessClaims, err := svc.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "user-123", accessClaims.UserID)

	refreshClaims, err := svc.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-123", refreshClaims.UserID)
}

func TestVerify_RejectsCrossClassTokens(t *testing.T) {
	svc := newTokens(t, time.Minute, time.Hour)

	access, refresh, err := svc.IssuePair("user-123")
	require.NoError(t, err)

	// An access token is not a refresh token and vice versa.
	_, err = svc.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	svc := newTokens(t, -time.Minute, -time.Minute)

	access, refresh, err := svc.IssuePair("user-123")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	svc := newTokens(t, time.Minute, time.Hour)

	_, refresh, err := svc.IssuePair("user-123")
	require.NoError(t, err)

	tampered := refresh[:len(refresh)-2] + "xx"
	_, err = svc.VerifyRefresh(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyRefresh("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsForeignSecret(t *testing.T) {
	svc := newTokens(t, time.Minute, time.Hour)

	other, err := NewTokenService("other-access", "other-refresh", time.Minute, time.Hour)
	require.NoError(t, err)

	_, refresh, err := other.IssuePair("user-123")
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
