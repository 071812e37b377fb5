package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()

	token, expiresAt, err := GenerateToken(secret, "admin", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(AdminTokenTTL).Unix(), expiresAt.Unix())

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
}

func TestValidateTokenRejects(t *testing.T) {
	secret := []byte("test-secret")

	token, _, err := GenerateToken(secret, "admin", time.Now())
	require.NoError(t, err)

	_, err = ValidateToken([]byte("other-secret"), token)
	assert.Error(t, err)

	expired, _, err := GenerateToken(secret, "admin", time.Now().Add(-2*AdminTokenTTL))
	require.NoError(t, err)
	_, err = ValidateToken(secret, expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(secret, unsigned)
	assert.Error(t, err)
}

func TestValidateUUID(t *testing.T) {
	assert.True(t, ValidateUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, ValidateUUID("not-a-uuid"))
	assert.False(t, ValidateUUID(""))
}

func TestEmptySecretIsRejected(t *testing.T) {
	_, _, err := GenerateToken(nil, "admin", time.Now())
	assert.ErrorIs(t, err, ErrEmptySecret)

	token, _, err := GenerateToken([]byte("SECRET"), "admin", time.Now())
	require.NoError(t, err)
	_, err = ValidateToken([]byte{}, token)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
