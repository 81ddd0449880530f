package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromRequest(r)
		require.NotNil(t, claims)
		w.WriteHeader(http.StatusOK)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tc := newTestCodec()
	signed, err := tc.SignAccess(testAdmin())
	require.NoError(t, err)

	handler := RequireAuth(tc)(protectedHandler(t))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	tc := newTestCodec()
	handler := RequireAuth(tc)(protectedHandler(t))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing token")
}

func TestRequireAuth_WrongScheme(t *testing.T) {
	tc := newTestCodec()
	handler := RequireAuth(tc)(protectedHandler(t))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tc := newTestCodec()
	handler := RequireAuth(tc)(protectedHandler(t))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.value")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid/expired token")
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	tc := newTestCodec()
	refresh, err := tc.SignRefresh("admin-1", "token-id-1")
	require.NoError(t, err)

	handler := RequireAuth(tc)(protectedHandler(t))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
