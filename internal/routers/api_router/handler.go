// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/haierkeys/simple-note-service/internal/app"
	"github.com/haierkeys/simple-note-service/internal/middleware"
	"github.com/haierkeys/simple-note-service/pkg/logger"

	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录带 Trace ID 的错误日志
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
	)
}
