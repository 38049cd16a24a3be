package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret, userID, username string, expiresAt time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func runMiddleware(t *testing.T, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	handler := JWTAuthMiddleware(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token := signToken(t, testSecret, "5f1a2b3c4d5e6f7a8b9c0d1e", "alice", time.Now().Add(time.Hour))

	c, err := runMiddleware(t, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "5f1a2b3c4d5e6f7a8b9c0d1e", c.Get("userID"))
	assert.Equal(t, "alice", c.Get("username"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	_, err := runMiddleware(t, "")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTAuthRejectsMalformedHeader(t *testing.T) {
	_, err := runMiddleware(t, "Token abcdef")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "some-other-secret", "5f1a2b3c4d5e6f7a8b9c0d1e", "alice", time.Now().Add(time.Hour))

	_, err := runMiddleware(t, "Bearer "+token)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, "5f1a2b3c4d5e6f7a8b9c0d1e", "alice", time.Now().Add(-time.Hour))

	_, err := runMiddleware(t, "Bearer "+token)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTAuthRejectsEmptyUserID(t *testing.T) {
	token := signToken(t, testSecret, "", "alice", time.Now().Add(time.Hour))

	_, err := runMiddleware(t, "Bearer "+token)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
