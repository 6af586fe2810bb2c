package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/mylibrary-be/internal/auth"
	"github.com/isdelr/mylibrary-be/internal/config"
	"github.com/isdelr/mylibrary-be/internal/database"
	"github.com/isdelr/mylibrary-be/internal/repository"
	"github.com/isdelr/mylibrary-be/internal/services"
)

type nullSender struct{}

func (nullSender) Send(to, subject, htmlBody string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  24 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ActionTokenTTL:  30 * time.Minute,
		AppBaseURL:      "http://localhost:8080",
	}
	codec, err := auth.NewCodec(cfg.JWTSecret)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	sessionService := services.NewSessionService(userRepo, codec, nullSender{}, cfg)
	userService := services.NewUserService(userRepo)
	bookService := services.NewBookService(db)
	addressService := services.NewAddressService(db)
	guard := auth.NewGuard(codec, userRepo)

	return NewRouter(cfg, guard, sessionService, userService, bookService, addressService)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func liveCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}

// Covers the full register → login → profile → logout flow over HTTP.
func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	// Register: response carries the user id and never the password.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/register", map[string]string{
		"email":    "a@example.com",
		"password": "Pass$1234",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "Pass$1234")

	var registerResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registerResp))
	require.NotEmpty(t, registerResp.Data.ID)
	assert.Len(t, liveCookies(rec), 2)

	// Login with a wrong password is rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    "a@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Login with the right password sets both auth cookies.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    "a@example.com",
		"password": "Pass$1234",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := liveCookies(rec)
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
	}

	// The access cookie resolves the same user on the profile endpoint.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/profile", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	var profileResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profileResp))
	assert.Equal(t, registerResp.Data.ID, profileResp.Data.ID)

	// Logout clears the cookies; without them the profile call fails.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/logout", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, liveCookies(rec))

	rec = doJSON(t, router, http.MethodGet, "/api/v1/profile", nil, liveCookies(rec))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotationOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/register", map[string]string{
		"email":    "a@example.com",
		"password": "Pass$1234",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	firstCookies := liveCookies(rec)

	// First refresh succeeds and issues a new pair.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/refresh-tokens", nil, firstCookies)
	require.Equal(t, http.StatusOK, rec.Code)
	secondCookies := liveCookies(rec)
	require.Len(t, secondCookies, 2)

	// Replaying the first refresh token is rejected after rotation.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/refresh-tokens", nil, firstCookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The fresh pair keeps working.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/refresh-tokens", nil, secondCookies)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookWritesRequireAdmin(t *testing.T) {
	router := newTestRouter(t)

	// Anonymous reads are allowed.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/books", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Anonymous writes are not.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/books", map[string]string{
		"title": "Dune", "author": "Frank Herbert", "genre": "Sci-Fi",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A regular user is rejected by the role guard.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/register", map[string]string{
		"email":    "user@example.com",
		"password": "Pass$1234",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/books", map[string]string{
		"title": "Dune", "author": "Frank Herbert", "genre": "Sci-Fi",
	}, liveCookies(rec))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
