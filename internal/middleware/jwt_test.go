package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cherry4xo/booker/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "BOOKER", 15)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+at.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec := runProtected(t, "", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 7, "BOOKER", 15)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+at.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec := runProtected(t, "Bearer not.a.jwt", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "BOOKER", 15)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+at.Token, JWTAuth(testSecret), RequireRole("BOOKER", "MODERATOR"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runProtected(t, "Bearer "+at.Token, JWTAuth(testSecret), RequireRole("MODERATOR"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	// No JWTAuth in front: the role claim is absent from the context.
	rec := runProtected(t, "", RequireRole("BOOKER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
