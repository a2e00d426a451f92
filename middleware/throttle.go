package middleware

import (
	"fmt"
	"math"
	"net/http"

	"github.com/Sage-GtHub/neurostate-sub005/helpers"

	"github.com/gin-gonic/gin"
)

// Throttle enforces a named rate-limit preset per authenticated user. Runs
// after Authenticate so the key is the user, not the connection.
func Throttle(rl *helpers.RateLimiter, preset string) gin.HandlerFunc {
	limit, ok := helpers.RateLimitPresets[preset]
	if !ok {
		panic(fmt.Sprintf("unknown rate limit preset: %s", preset))
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get("claims")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, ok := claimsValue.(*helpers.Claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims"})
			return
		}

		key := preset + ":" + claims.UserID
		if !rl.Check(key, limit) {
			wait := rl.RetryAfter(key, limit)
			seconds := int(math.Ceil(wait.Seconds()))
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Too many requests. Please wait %d seconds.", seconds),
			})
			return
		}
		c.Next()
	}
}
