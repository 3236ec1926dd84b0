package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginHandler(t *testing.T) {
	user := testUser(t, "jane@example.com", "s3cret")
	svc := NewService(newFakeStore(user), "test-secret", time.Hour)
	h := NewHandler(svc, testLogger())

	body := `{"email":"jane@example.com","password":"s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, user.ID.Hex(), resp.UserID)
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	svc := NewService(newFakeStore(testUser(t, "jane@example.com", "s3cret")), "test-secret", time.Hour)
	h := NewHandler(svc, testLogger())

	body := `{"email":"jane@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestLoginHandler_InvalidBody(t *testing.T) {
	svc := NewService(newFakeStore(), "test-secret", time.Hour)
	h := NewHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddleware(t *testing.T) {
	user := testUser(t, "jane@example.com", "s3cret")
	svc := NewService(newFakeStore(user), "test-secret", time.Hour)

	token, err := svc.CreateToken(user)
	require.NoError(t, err)

	var seen *User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	svc.Middleware(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestMiddleware_MissingHeader(t *testing.T) {
	svc := NewService(newFakeStore(), "test-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	svc.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")
}

func TestMiddleware_BadToken(t *testing.T) {
	svc := NewService(newFakeStore(), "test-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	svc.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_DisabledAccount(t *testing.T) {
	user := testUser(t, "jane@example.com", "s3cret")
	svc := NewService(newFakeStore(user), "test-secret", time.Hour)

	token, err := svc.CreateToken(user)
	require.NoError(t, err)

	// Disable after issuing the token.
	user.IsActive = false

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	svc.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "account disabled")
}

func TestMeHandler(t *testing.T) {
	user := testUser(t, "jane@example.com", "s3cret")
	svc := NewService(newFakeStore(user), "test-secret", time.Hour)
	h := NewHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req = req.WithContext(WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jane@example.com", resp["email"])
	assert.Equal(t, "Jane Doe", resp["full_name"])
	assert.Equal(t, true, resp["is_active"])
}
