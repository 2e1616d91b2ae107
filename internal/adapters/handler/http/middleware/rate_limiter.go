package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "clario:ratelimit"

// RateLimiterMiddleware allows limit requests per client IP in each fixed
// window. Requests pass through when Redis is unavailable.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = time.Minute
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		now := time.Now()

		bucket := now.UnixNano() / int64(window)
		key := fmt.Sprintf("%s:%s:%d", rateLimitPrefix, c.ClientIP(), bucket)
		resetAt := time.Unix(0, (bucket+1)*int64(window))

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[RATELIMIT] redis unavailable, skipping check: %v", err)
			c.Next()
			return
		}

		count := incr.Val()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"retry_in_s": int(time.Until(resetAt).Seconds()) + 1,
			})
			return
		}

		c.Next()
	}
}
