package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// Limiter holds token buckets by key
type Limiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// Key 限流键
	Key string
	// FillInterval 放入令牌的间隔
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次放入的令牌数
	Quantum int64
}
