package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(secret []byte) *gin.Engine {
	r := gin.New()
	r.Use(Authentication(secret))
	r.GET("/protected", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signToken(t *testing.T, secret []byte, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func get(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticationAcceptsValidToken(t *testing.T) {
	secret := []byte("secret-key")
	router := newProtectedRouter(secret)

	w := get(router, "Bearer "+signToken(t, secret, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticationRejectsMissingOrMalformedHeader(t *testing.T) {
	router := newProtectedRouter([]byte("secret-key"))

	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "Bearer not-a-jwt").Code)
}

func TestAuthenticationRejectsWrongSignature(t *testing.T) {
	router := newProtectedRouter([]byte("secret-key"))

	w := get(router, "Bearer "+signToken(t, []byte("other-key"), time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationRejectsExpiredToken(t *testing.T) {
	secret := []byte("secret-key")
	router := newProtectedRouter(secret)

	w := get(router, "Bearer "+signToken(t, secret, -time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationRejectsEverythingWithEmptyKey(t *testing.T) {
	router := newProtectedRouter(nil)

	// A token signed with the empty secret must not pass either.
	w := get(router, "Bearer "+signToken(t, []byte{}, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
