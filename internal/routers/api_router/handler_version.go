package api_router

import (
	"github.com/haierkeys/simple-note-service/internal/app"
	pkgapp "github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionHandler version info API router handler
// VersionHandler 版本信息 API 路由处理器
type VersionHandler struct {
	*Handler
}

// NewVersionHandler creates VersionHandler instance
// NewVersionHandler 创建 VersionHandler 实例
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{
		Handler: NewHandler(a),
	}
}

// ServerVersion retrieves server version information
// @Summary Get server version info
// @Description Get current server software version, Git tag, and build time
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=pkgapp.VersionInfo} "Success"
// @Router /api/version [get]
func (h *VersionHandler) ServerVersion(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(h.App.Version()))
}
