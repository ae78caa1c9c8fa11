package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	s := NewJWTService("test-secret")

	token, err := s.GenerateAuthToken("user-1", "org-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "org-1", claims.OrganizationID)
}

func TestValidateTokenWithoutOrganization(t *testing.T) {
	s := NewJWTService("test-secret")

	token, err := s.GenerateAuthToken("user-1", "")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.OrganizationID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a")
	verifier := NewJWTService("secret-b")

	token, err := issuer.GenerateAuthToken("user-1", "")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := NewJWTService("test-secret")
	s.lifetime = -time.Minute

	token, err := s.GenerateAuthToken("user-1", "")
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	s := NewJWTService("test-secret")

	_, err := s.ValidateToken("not.a.token")
	assert.Error(t, err)
}
