// Package tracer carries request trace ids and builds the optional Jaeger tracer
// Package tracer 传递请求 Trace ID，并按需创建 Jaeger 链路追踪
package tracer

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type traceIDKey struct{}

// NewTraceID 生成新的 Trace ID
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID 将 Trace ID 写入 context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID 从 context 读取 Trace ID，没有时返回空串
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewJaegerTracer reports every span to the agent at agentHostPort and installs it globally
// NewJaegerTracer 创建上报到 agentHostPort 的 Jaeger tracer 并设为全局 tracer
func NewJaegerTracer(serviceName, agentHostPort string) (opentracing.Tracer, io.Closer, error) {
	cfg := &jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: agentHostPort,
		},
	}

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, nil, errors.Wrap(err, "init jaeger tracer")
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, closer, nil
}
