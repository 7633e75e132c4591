package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopverse/internal/config"
	"shopverse/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func signSession(t *testing.T, secret string, userID int64, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": "alex@example.com",
		"iat":   time.Now().Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func invoke(cfg config.Config, mw echo.MiddlewareFunc, cookie *http.Cookie) (*httptest.ResponseRecorder, int64) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUserID int64
	handler := mw(func(c echo.Context) error {
		if v, ok := c.Get(middleware.CtxUserIDKey).(int64); ok {
			gotUserID = v
		}
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, gotUserID
}

func TestRequireSession_NoCookie(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	rec, _ := invoke(cfg, middleware.RequireSession(cfg), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestRequireSession_ValidCookie(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := signSession(t, "test-secret", 42, time.Now().Add(time.Hour))

	rec, userID := invoke(cfg, middleware.RequireSession(cfg), &http.Cookie{
		Name:  middleware.SessionCookieName,
		Value: token,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), userID)
}

func TestRequireSession_ExpiredCookie(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := signSession(t, "test-secret", 42, time.Now().Add(-time.Hour))

	rec, _ := invoke(cfg, middleware.RequireSession(cfg), &http.Cookie{
		Name:  middleware.SessionCookieName,
		Value: token,
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_WrongSecret(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := signSession(t, "another-secret", 42, time.Now().Add(time.Hour))

	rec, _ := invoke(cfg, middleware.RequireSession(cfg), &http.Cookie{
		Name:  middleware.SessionCookieName,
		Value: token,
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// OptionalSessionは未ログインでも通す
func TestOptionalSession_NoCookiePassesThrough(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	rec, userID := invoke(cfg, middleware.OptionalSession(cfg), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), userID)
}

func TestOptionalSession_ValidCookieSetsUser(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := signSession(t, "test-secret", 42, time.Now().Add(time.Hour))

	rec, userID := invoke(cfg, middleware.OptionalSession(cfg), &http.Cookie{
		Name:  middleware.SessionCookieName,
		Value: token,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), userID)
}
