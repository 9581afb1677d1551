package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancehub/backend/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hashed)

	assert.True(t, CheckPassword(hashed, "s3cret-pass"))
	assert.False(t, CheckPassword(hashed, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret-pass"))
}

func TestSignJWT(t *testing.T) {
	token, err := SignJWT("test-secret", "user-123", models.RoleClient, 60)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := SignJWT("test-secret", "user-456", models.RoleFreelancer, 60)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(*Claims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, models.RoleClient, claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}
