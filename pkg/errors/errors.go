package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/simple-note-service/internal/middleware"
	"github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/code"
)

// AppError 统一应用错误结构体
// 包含错误码、状态、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 恒为 false
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus 返回该错误对应的 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
		httpStatus: c.StatusCode(),
	}
}

// WithTraceID 设置 TraceID 并返回自身（链式调用）
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并按错误码对应的 HTTP 状态返回
// 未知错误一律返回通用 500，不暴露内部信息
func ErrorResponse(c *gin.Context, err error) {
	codeErr := code.ErrorServerInternal
	var target *code.Code
	if errors.As(err, &target) {
		codeErr = target
	}

	response := NewAppError(codeErr, err).WithTraceID(middleware.GetTraceIDFromGin(c))
	response.Message = codeErr.MsgIn(app.GetLang(c))
	send(c, response)
}

func send(c *gin.Context, e *AppError) {
	c.Set("status_code", e.HTTPStatus())
	c.JSON(e.HTTPStatus(), e)
}
