package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/security"
)

const testSecret = "test-secret"

func protected(t *testing.T, capture *string) http.Handler {
	t.Helper()
	return JWT(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*capture = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestJWTMissingHeader(t *testing.T) {
	var userID string
	rec := httptest.NewRecorder()

	protected(t, &userID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, userID)
}

func TestJWTMalformedHeader(t *testing.T) {
	var userID string
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	protected(t, &userID).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTInvalidToken(t *testing.T) {
	var userID string
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	protected(t, &userID).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTValidTokenInjectsUser(t *testing.T) {
	token, err := security.GenerateToken(testSecret, "helpmesh", &domain.User{
		ID:    "user-1",
		Email: "alice@example.com",
		Role:  domain.RoleUser,
	}, time.Hour)
	require.NoError(t, err)

	var userID string
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	protected(t, &userID).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", userID)
}

func TestInjectUserRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := InjectUser(req.Context(), "user-1", domain.RoleAdmin)

	assert.Equal(t, "user-1", UserID(ctx))
	assert.Equal(t, domain.RoleAdmin, Role(ctx))

	assert.Empty(t, UserID(req.Context()))
	assert.Empty(t, Role(req.Context()))
}
