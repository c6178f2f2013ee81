package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/helpmesh/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Email: "alice@example.com",
		Role:  domain.RoleVolunteer,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "helpmesh", testUser(), time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, domain.RoleVolunteer, claims.Role)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "helpmesh", testUser(), time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(token, "other-secret")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", "helpmesh", testUser(), -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken("not-a-token", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyTokenDefaultsRole(t *testing.T) {
	user := testUser()
	user.Role = ""

	token, err := GenerateToken("secret", "helpmesh", user, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestPasswordHashAndCompare(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.NoError(t, ComparePassword(hash, "hunter2hunter2"))
	assert.Error(t, ComparePassword(hash, "wrong password"))
}
