package code

import "net/http"

var (
	// 成功
	Success = NewSuss(1, http.StatusOK, lang{en: "Success", zh_cn: "成功"})
	// 创建成功
	SuccessCreate = NewSuss(2, http.StatusCreated, lang{en: "Note created successfully", zh_cn: "笔记创建成功"})
	// 更新成功
	SuccessUpdate = NewSuss(3, http.StatusOK, lang{en: "Note updated successfully", zh_cn: "笔记更新成功"})
	// 删除成功
	SuccessDelete = NewSuss(4, http.StatusOK, lang{en: "Note deleted successfully", zh_cn: "笔记删除成功"})

	ErrorServerInternal   = NewError(500, http.StatusInternalServerError, lang{en: "Internal Server Error", zh_cn: "服务器内部错误"})
	ErrorNotFoundAPI      = NewError(404, http.StatusNotFound, lang{en: "Endpoint not found", zh_cn: "接口不存在"})
	ErrorInvalidParams    = NewError(400, http.StatusBadRequest, lang{en: "Invalid params", zh_cn: "参数错误"})
	ErrorTooManyRequests  = NewError(429, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorServiceUnhealthy = NewError(503, http.StatusServiceUnavailable, lang{en: "Service unavailable", zh_cn: "服务不可用"})
	ErrorRequestTimeout   = NewError(504, http.StatusGatewayTimeout, lang{en: "Request timed out", zh_cn: "请求超时"})

	ErrorDBQuery = NewError(505, http.StatusInternalServerError, lang{en: "Internal Server Error", zh_cn: "服务器内部错误"})

	// 笔记
	ErrorNoDataProvided = NewError(40001, http.StatusBadRequest, lang{en: "No data provided", zh_cn: "未提供数据"})
	ErrorNoteValidation = NewError(40002, http.StatusBadRequest, lang{en: "Validation failed", zh_cn: "数据校验失败"})
	ErrorNoteNotFound   = NewError(40401, http.StatusNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
)
