package jwt

import (
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour, 0)

	token, exp, err := svc.GenerateAccessToken("u-1", "EMP001", user.RoleTeamLead)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims["user_id"])
	assert.Equal(t, "team_lead", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestSSETokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour, time.Minute)

	token, expiresIn, err := svc.GenerateSSEToken("u-2")
	require.NoError(t, err)
	assert.Equal(t, 60, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-2", userID)
}

func TestValidateSSETokenRejectsAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour, time.Minute)

	token, _, err := svc.GenerateAccessToken("u-1", "EMP001", user.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestValidateSSETokenRejectsExpired(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour, time.Minute).(*JWTService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.GenerateSSEToken("u-1")
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}
