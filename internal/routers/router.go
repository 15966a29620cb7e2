package routers

import (
	"bytes"
	"embed"
	"net/http"
	"sync"
	"time"

	"github.com/haierkeys/simple-note-service/internal/app"
	"github.com/haierkeys/simple-note-service/internal/middleware"
	"github.com/haierkeys/simple-note-service/internal/routers/api_router"
	"github.com/haierkeys/simple-note-service/pkg/limiter"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// bootstrapPlaceholder 前端页面中被替换为启动数据的占位符
const bootstrapPlaceholder = "__BOOTSTRAP_DATA__"

// 配置重载会重建路由，指标只注册一次
var (
	metricsOnce sync.Once
	httpMetrics *middleware.HTTPMetrics
)

func getHTTPMetrics() *middleware.HTTPMetrics {
	metricsOnce.Do(func() {
		httpMetrics = middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)
	})
	return httpMetrics
}

// newMethodLimiters 为每个笔记接口创建令牌桶，perSecond <= 0 时不限流
func newMethodLimiters(perSecond int) limiter.Face {
	l := limiter.NewMethodLimiter()
	if perSecond <= 0 {
		return l
	}
	for _, route := range []string{"/api/notes", "/api/notes/:id", "/api/tags"} {
		l.AddBuckets(limiter.BucketRule{
			Key:          route,
			FillInterval: time.Second,
			Capacity:     int64(perSecond),
			Quantum:      int64(perSecond),
		})
	}
	return l
}

// NewRouter 创建公开 HTTP 路由
func NewRouter(frontendFiles embed.FS, appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	api_router.PublishWriteQueue(appContainer.WriteQueueManager())

	indexContent := renderIndex(frontendFiles, appContainer)

	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexContent)
	})

	api := r.Group("/api")
	{
		api.Use(getHTTPMetrics().Handler())
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddleware(middleware.TraceConfig{
			Enabled: cfg.Tracer.Enabled,
			Header:  cfg.Tracer.Header,
		}))
		api.Use(middleware.RateLimiter(newMethodLimiters(cfg.App.RateLimitPerSecond)))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		noteHandler := api_router.NewNoteHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)

		api.GET("/notes", noteHandler.List)
		api.POST("/notes", noteHandler.Create)
		api.GET("/notes/:id", noteHandler.Get)
		api.PUT("/notes/:id", noteHandler.Update)
		api.DELETE("/notes/:id", noteHandler.Delete)
		api.GET("/tags", noteHandler.Tags)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}

// renderIndex 读取内嵌的前端页面并写入启动数据
func renderIndex(frontendFiles embed.FS, appContainer *app.App) []byte {
	content, err := frontendFiles.ReadFile("frontend/index.html")
	if err != nil {
		appContainer.Logger().Warn("frontend index not embedded", zap.Error(err))
		return []byte("<!doctype html><title>" + app.Name + "</title>")
	}

	data, err := sonic.Marshal(map[string]interface{}{
		"name":    app.Name,
		"version": appContainer.Version().Version,
		"api":     "/api",
	})
	if err != nil {
		appContainer.Logger().Warn("frontend bootstrap data encode failed", zap.Error(err))
		data = []byte("{}")
	}

	return bytes.Replace(content, []byte(bootstrapPlaceholder), data, 1)
}
