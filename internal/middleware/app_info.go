package middleware

import (
	"github.com/haierkeys/simple-note-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// AppInfoWithConfig 在 gin.Context 中写入应用信息
func AppInfoWithConfig(name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Set("access_host", app.GetAccessHost(c))

		c.Next()
	}
}
