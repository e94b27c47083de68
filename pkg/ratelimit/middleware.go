package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware rejects requests from a client IP once its bucket is empty.
func Middleware(s *Store) gin.HandlerFunc {
	retryAfter := "1"
	if s.rps > 0 && float64(s.rps) < 1 {
		retryAfter = strconv.Itoa(int(1/float64(s.rps)) + 1)
	}

	return func(c *gin.Context) {
		if s.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"ok":    false,
			"error": "too many requests",
		})
	}
}
