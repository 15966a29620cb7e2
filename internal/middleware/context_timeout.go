package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// ContextTimeout bounds every request's context; timeout <= 0 leaves it unbounded.
// A handler that gave up on the deadline without writing gets a 504.
// ContextTimeout 为请求上下文设置超时，超时后处理函数未输出时返回 504
func ContextTimeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			app.NewResponse(c).ToResponse(code.ErrorRequestTimeout)
		}
	}
}
