package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/config"
)

func newIssuer(accessTTL time.Duration) *TokenIssuer {
	return NewTokenIssuer(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     accessTTL,
		RefreshTTL:    24 * time.Hour,
	})
}

func TestGenerateTokensSharesJTI(t *testing.T) {
	ti := newIssuer(15 * time.Minute)
	userID := uuid.New()

	pair, err := ti.GenerateTokens(userID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, pair.RefreshTTL)

	access, err := ti.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := ti.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, pair.JTI, access.ID)
	assert.Equal(t, pair.JTI, refresh.ID)
	assert.Equal(t, "admin", access.UserType)

	got, err := access.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyRejectsWrongSecretAndExpiry(t *testing.T) {
	ti := newIssuer(15 * time.Minute)
	pair, err := ti.GenerateTokens(uuid.New(), "agent")
	require.NoError(t, err)

	_, err = ti.VerifyAccess(pair.RefreshToken)
	assert.Error(t, err, "refresh token is not an access token")

	expired := newIssuer(-time.Minute)
	pair, err = expired.GenerateTokens(uuid.New(), "agent")
	require.NoError(t, err)
	_, err = expired.VerifyAccess(pair.AccessToken)
	assert.Error(t, err)
}
