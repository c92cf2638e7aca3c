package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SlowDown adds a monotonically growing artificial delay once a client's
// request count in the window crosses the threshold: the n-th request past it
// waits (n - threshold) * step, capped at maxDelay. Unlike RateLimit it never
// rejects; automated abuse degrades gracefully before the hard counter trips.
func SlowDown(rdb *redis.Client, after int, step, maxDelay, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	if rdb == nil || after <= 0 || step <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "sd:" + keyFn(c)

		countI, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Result()
		if err != nil {
			// fail-open on redis error
			c.Next()
			return
		}
		count := toInt(countI)

		if count > after {
			delay := time.Duration(count-after) * step
			if maxDelay > 0 && delay > maxDelay {
				delay = maxDelay
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
