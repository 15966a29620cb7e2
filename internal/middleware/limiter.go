package middleware

import (
	"math"
	"strconv"

	"github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/code"
	"github.com/haierkeys/simple-note-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter takes one token per request from the route's bucket.
// Routes without a bucket, or a nil limiter, are never limited.
// RateLimiter 每个请求从路由对应的令牌桶取一个令牌，无桶的路由不限流
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		bucket, ok := l.GetBucket(l.Key(c))
		if ok && bucket.TakeAvailable(1) == 0 {
			c.Header("Retry-After", strconv.Itoa(retryAfter(bucket.Rate())))
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}

// retryAfter 下一个令牌到来前的秒数，至少 1 秒
func retryAfter(perSecond float64) int {
	if perSecond <= 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(1/perSecond)))
}
