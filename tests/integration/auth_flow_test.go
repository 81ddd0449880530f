package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		// No docker available; unit tests elsewhere still cover the logic.
		fmt.Fprintf(os.Stderr, "skipping integration tests: %v\n", err)
		os.Exit(0)
	}
	testDB = db

	code := m.Run()

	testDB.Teardown(ctx)
	os.Exit(code)
}

func setupServer(t *testing.T) *TestServer {
	t.Helper()
	require.NoError(t, testDB.CleanupTables(context.Background()))

	ts := NewTestServer(testDB.DB)
	t.Cleanup(ts.Close)
	return ts
}

func TestLoginRefreshLogoutFlow(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	email, password := TestAdmin("flow")
	_, err := SeedAdmin(ctx, testDB.Pool, email, password)
	require.NoError(t, err)

	// Login
	resp, body, err := ts.PostJSON("/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %v", body)

	accessToken, _ := body["accessToken"].(string)
	require.NotEmpty(t, accessToken)

	cookie := RefreshCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	// Me with the access token
	resp, body, err = ts.GetJSON("/api/auth/me", accessToken)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	admin, _ := body["admin"].(map[string]any)
	require.NotNil(t, admin)
	assert.Equal(t, email, admin["email"])

	// Refresh rotates the cookie
	resp, body, err = ts.PostJSON("/api/auth/refresh", nil, cookie)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "refresh failed: %v", body)

	rotated := RefreshCookie(resp)
	require.NotNil(t, rotated)
	assert.NotEqual(t, cookie.Value, rotated.Value)

	// The old cookie was revoked by the rotation
	resp, _, err = ts.PostJSON("/api/auth/refresh", nil, cookie)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logout with the rotated cookie always succeeds
	resp, body, err = ts.PostJSON("/api/auth/logout", nil, rotated)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	// The rotated cookie no longer refreshes
	resp, _, err = ts.PostJSON("/api/auth/refresh", nil, rotated)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	email, password := TestAdmin("badcreds")
	_, err := SeedAdmin(ctx, testDB.Pool, email, password)
	require.NoError(t, err)

	resp, body, err := ts.PostJSON("/api/auth/login", map[string]string{
		"email":    email,
		"password": "wrong password",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])

	// Unknown email gets the identical response
	resp, body, err = ts.PostJSON("/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever123",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestPasswordResetFlow(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	email, password := TestAdmin("reset")
	_, err := SeedAdmin(ctx, testDB.Pool, email, password)
	require.NoError(t, err)

	// Request a reset; the raw token only travels by email
	resp, body, err := ts.PostJSON("/api/auth/forgot-password", map[string]string{"email": email})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	sent := ts.EmailService.GetLastEmail()
	require.NotNil(t, sent)
	assert.Equal(t, "password_reset", sent.Kind)
	require.NotEmpty(t, sent.Token)

	// Confirm with the mailed token
	resp, body, err = ts.PostJSON("/api/auth/reset-password", map[string]string{
		"email":       email,
		"token":       sent.Token,
		"newPassword": "BrandNewPassword1!",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "reset failed: %v", body)

	// Old password no longer works, new one does
	resp, _, err = ts.PostJSON("/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _, err = ts.PostJSON("/api/auth/login", map[string]string{
		"email":    email,
		"password": "BrandNewPassword1!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The token is single use
	resp, _, err = ts.PostJSON("/api/auth/reset-password", map[string]string{
		"email":       email,
		"token":       sent.Token,
		"newPassword": "AnotherPassword1!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForgotPassword_UnknownEmailStillOK(t *testing.T) {
	ts := setupServer(t)

	resp, body, err := ts.PostJSON("/api/auth/forgot-password", map[string]string{
		"email": "ghost@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Nil(t, ts.EmailService.GetLastEmail())
}

func TestPublicPostsVisibility(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	email, password := TestAdmin("posts")
	_, err := SeedAdmin(ctx, testDB.Pool, email, password)
	require.NoError(t, err)

	resp, body, err := ts.PostJSON("/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	accessToken := body["accessToken"].(string)

	// Create a draft via the admin API
	resp, body, err = ts.postJSONAuth("/api/admin/posts", accessToken, map[string]any{
		"title":   "Vera Shkollore 2026",
		"content": "Programi i plote i veres shkollore.",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %v", body)

	post := body["post"].(map[string]any)
	postID := post["id"].(string)
	slug := post["slug"].(string)
	assert.Equal(t, "vera-shkollore-2026", slug)

	// Drafts are invisible publicly
	resp, _, err = ts.GetJSON("/api/posts/"+slug, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Publish, then it appears
	resp, _, err = ts.patchJSONAuth("/api/admin/posts/"+postID+"/status", accessToken, map[string]string{
		"status": "PUBLISHED",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body, err = ts.GetJSON("/api/posts/"+slug, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	published := body["post"].(map[string]any)
	assert.Equal(t, "Vera Shkollore 2026", published["title"])
}

func TestPostSlugDisambiguation(t *testing.T) {
	ts := setupServer(t)
	ctx := context.Background()

	email, password := TestAdmin("slugs")
	_, err := SeedAdmin(ctx, testDB.Pool, email, password)
	require.NoError(t, err)

	accessToken := loginFor(t, ts, email, password)

	payload := map[string]any{
		"title":   "Njoftim i Ri",
		"content": "Permbajtja e njoftimit.",
	}

	resp, body, err := ts.postJSONAuth("/api/admin/posts", accessToken, payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "first create failed: %v", body)
	first := body["post"].(map[string]any)
	assert.Equal(t, "njoftim-i-ri", first["slug"])

	// A second post with the same title gets a suffixed slug instead of a
	// conflict error.
	resp, body, err = ts.postJSONAuth("/api/admin/posts", accessToken, payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "second create failed: %v", body)
	second := body["post"].(map[string]any)

	secondSlug := second["slug"].(string)
	assert.NotEqual(t, first["slug"], secondSlug)
	assert.Contains(t, secondSlug, "njoftim-i-ri-")
}
