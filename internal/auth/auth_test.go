package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.Equal(t, defaultJWTSecret, SecretFromEnv())

	t.Setenv("JWT_SECRET", "rotated-secret")
	assert.Equal(t, "rotated-secret", SecretFromEnv())
}

func TestGenerateAndValidateToken(t *testing.T) {
	s := NewService(SecretFromEnv())
	s.RegisterAPICredentials(TestAPIKey, TestAPISecret)

	token, err := s.GenerateToken(Credentials{APIKey: TestAPIKey, APISecret: TestAPISecret})
	require.NoError(t, err)

	claims, err := s.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, TestAPIKey, claims.ClientID)
	assert.Contains(t, claims.Permissions, "trade")
}

func TestGenerateTokenRejectsBadCredentials(t *testing.T) {
	s := NewService(SecretFromEnv())
	s.RegisterAPICredentials(TestAPIKey, TestAPISecret)

	_, err := s.GenerateToken(Credentials{APIKey: TestAPIKey, APISecret: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokensSignedWithDifferentSecretRejected(t *testing.T) {
	signer := NewService("secret-a")
	signer.RegisterAPICredentials(TestAPIKey, TestAPISecret)
	verifier := NewService("secret-b")

	token, err := signer.GenerateToken(Credentials{APIKey: TestAPIKey, APISecret: TestAPISecret})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token.Token)
	assert.Error(t, err)
}
