package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMethodLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := NewMethodLimiter().AddBuckets(BucketRule{
		Key:          "/api/notes",
		FillInterval: time.Hour,
		Capacity:     2,
		Quantum:      1,
	})

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/notes?search=x", nil)

	key := l.Key(c)
	assert.Equal(t, "/api/notes", key)

	bucket, ok := l.GetBucket(key)
	assert.True(t, ok)
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(0), bucket.TakeAvailable(1))

	_, ok = l.GetBucket("/api/tags")
	assert.False(t, ok)
}
