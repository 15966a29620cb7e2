package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cors allows browser clients on other origins to call the API
// Cors 允许跨域访问接口
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, lang, "+DefaultTraceIDHeader)
			c.Header("Access-Control-Expose-Headers", DefaultTraceIDHeader)
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
