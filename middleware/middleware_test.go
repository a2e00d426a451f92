package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sage-GtHub/neurostate-sub005/helpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	helpers.SetJWTKey("middleware-test-key")
}

func newAuthedContext(t *testing.T, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Set("claims", &helpers.Claims{UserID: userID, Role: "USER"})
	return c, w
}

func TestAuthenticate(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		Authenticate()(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", "not-a-bearer-token")

		Authenticate()(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		token, _ := helpers.GenerateTokens("a@b.c", "u1", "USER")

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", "Bearer "+token)

		Authenticate()(c)

		require.False(t, c.IsAborted())
		claimsVal, ok := c.Get("claims")
		require.True(t, ok)
		claims := claimsVal.(*helpers.Claims)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "USER", claims.Role)
	})
}

func TestAuthorize(t *testing.T) {
	t.Run("role allowed", func(t *testing.T) {
		c, _ := newAuthedContext(t, "u1")
		Authorize("ADMIN", "USER")(c)
		assert.False(t, c.IsAborted())
	})

	t.Run("role denied", func(t *testing.T) {
		c, w := newAuthedContext(t, "u1")
		Authorize("ADMIN")(c)
		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestThrottle(t *testing.T) {
	t.Run("enforces preset per user", func(t *testing.T) {
		rl := helpers.NewRateLimiter()
		handler := Throttle(rl, "protocol") // 3 per 300s

		for i := 0; i < 3; i++ {
			c, w := newAuthedContext(t, "u1")
			handler(c)
			require.Equalf(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		}

		c, w := newAuthedContext(t, "u1")
		handler(c)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "Please wait")

		// Another user is unaffected.
		c2, w2 := newAuthedContext(t, "u2")
		handler(c2)
		assert.Equal(t, http.StatusOK, w2.Code)
	})

	t.Run("no claims rejects", func(t *testing.T) {
		rl := helpers.NewRateLimiter()
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		Throttle(rl, "sync")(c)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown preset panics at wiring time", func(t *testing.T) {
		assert.Panics(t, func() {
			Throttle(helpers.NewRateLimiter(), "nope")
		})
	})
}
