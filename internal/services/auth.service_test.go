package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	auth, err := NewAuthService("a-test-secret-that-is-long-enough!", time.Hour)
	require.NoError(t, err)

	token, err := auth.GenerateToken("ops-dashboard")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-dashboard", claims.Viewer)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestAuthServiceRejectsForeignToken(t *testing.T) {
	a, err := NewAuthService("first-secret-first-secret-first!!", time.Hour)
	require.NoError(t, err)
	b, err := NewAuthService("second-secret-second-secret-2nd!!", time.Hour)
	require.NoError(t, err)

	token, err := a.GenerateToken("viewer")
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.Error(t, err)

	_, err = a.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestAuthServiceRejectsExpired(t *testing.T) {
	auth, err := NewAuthService("a-test-secret-that-is-long-enough!", -time.Minute)
	require.NoError(t, err)

	token, err := auth.GenerateToken("viewer")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService("", 0)
	assert.Error(t, err)
}
