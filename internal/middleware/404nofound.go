package middleware

import (
	"github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound answers unknown routes, echoing the method and path in details
// NoFound 未匹配路由的处理，details 中返回请求方法与路径
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFoundAPI.WithDetails(c.Request.Method + " " + c.Request.URL.Path))
		c.Abort()
	}
}
