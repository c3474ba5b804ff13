package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/urbantwin/citytwin-backend/internal/pkg/ctxutil"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

// RateLimit caps requests per caller per minute using a fixed redis window.
// With no redis client or a zero limit it is a no-op; redis failures fail
// open so the cache never takes the API down with it.
func RateLimit(log *logger.Logger, rdb *goredis.Client, perMinute int) gin.HandlerFunc {
	if rdb == nil || perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	rlLog := log.With("middleware", "RateLimit")
	return func(c *gin.Context) {
		key := rateLimitKey(c)
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			rlLog.Warn("Counter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, time.Minute).Err(); err != nil {
				rlLog.Warn("Expire failed", "key", key, "error", err)
			}
		}
		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "too many requests", "code": "rate_limited"},
			})
			return
		}
		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	window := time.Now().Unix() / 60
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
		return fmt.Sprintf("ratelimit:user:%s:%d", rd.UserID, window)
	}
	return fmt.Sprintf("ratelimit:ip:%s:%d", c.ClientIP(), window)
}
