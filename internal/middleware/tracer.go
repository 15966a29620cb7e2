package middleware

import (
	"context"

	"github.com/haierkeys/simple-note-service/pkg/tracer"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const (
	// DefaultTraceIDHeader 默认的 Trace ID 请求头名称
	DefaultTraceIDHeader = "X-Trace-ID"
	// TraceIDKey gin.Context 中存储 Trace ID 的键
	TraceIDKey = "trace_id"
)

// TraceConfig 追踪中间件配置
type TraceConfig struct {
	// Enabled 是否启用
	Enabled bool
	// Header 读取与回写 Trace ID 的请求头，为空时使用 DefaultTraceIDHeader
	Header string
}

// TraceMiddleware 创建请求追踪中间件
// 功能：
// 1. 从请求头获取或生成唯一的 Trace ID
// 2. 将 Trace ID 注入到 gin.Context 和 request.Context
// 3. 在响应头中返回 Trace ID
// 4. 为请求开启 opentracing span，供 gorm 插件挂接子 span
func TraceMiddleware(cfg TraceConfig) gin.HandlerFunc {
	headerName := cfg.Header
	if headerName == "" {
		headerName = DefaultTraceIDHeader
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		traceID := c.GetHeader(headerName)
		if traceID == "" {
			traceID = tracer.NewTraceID()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(headerName, traceID)

		ctx := tracer.WithTraceID(c.Request.Context(), traceID)

		var span opentracing.Span
		t := opentracing.GlobalTracer()
		wireCtx, err := t.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(c.Request.Header))
		if err == nil {
			span = t.StartSpan(c.Request.Method+" "+c.FullPath(), ext.RPCServerOption(wireCtx))
		} else {
			span = t.StartSpan(c.Request.Method + " " + c.FullPath())
		}
		defer span.Finish()

		span.SetTag("trace_id", traceID)
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(ctx, span))

		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
	}
}

// GetTraceID 从 context.Context 获取 Trace ID
func GetTraceID(ctx context.Context) string {
	return tracer.TraceID(ctx)
}

// GetTraceIDFromGin 从 gin.Context 获取 Trace ID
func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, exists := c.Get(TraceIDKey); exists {
		if traceID, ok := id.(string); ok {
			return traceID
		}
	}
	return ""
}
