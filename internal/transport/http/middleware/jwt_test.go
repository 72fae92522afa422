package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherblog/internal/pkg/jwtutil"
	"gopherblog/internal/transport/http/middleware"
)

const testSecret = "middleware-test-secret"

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", middleware.AuthJWT(testSecret), func(c *gin.Context) {
		userID := c.GetUint(middleware.ContextUserIDKey)
		c.JSON(http.StatusOK, gin.H{
			"user_id":  userID,
			"username": c.GetString(middleware.ContextUsernameKey),
			"is_admin": c.GetBool(middleware.ContextIsAdminKey),
		})
	})
	return router
}

func TestAuthJWT_ValidToken(t *testing.T) {
	router := newProtectedRouter()

	token, err := jwtutil.GenerateToken(testSecret, time.Hour, 7, "alice", true)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.Contains(t, w.Body.String(), `"is_admin":true`)
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	router := newProtectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthJWT_BadScheme(t *testing.T) {
	router := newProtectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthJWT_TamperedToken(t *testing.T) {
	router := newProtectedRouter()

	token, err := jwtutil.GenerateToken("some-other-secret", time.Hour, 7, "alice", false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
