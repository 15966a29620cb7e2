package app

import (
	"github.com/haierkeys/simple-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// ContextLangKey gin context key holding the request language
// ContextLangKey 存放请求语言的 gin context 键
const ContextLangKey = "lang"

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

// Res is the unified response structure: Code/Status/Message/Data
// Count and Details use omitempty
// Res 是统一的响应结构：Code/Status/Message/Data
// 可选字段 Count 与 Details 使用 omitempty
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Details []string    `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// GetLang returns the language chosen for this request
// GetLang 获取当前请求的语言
func GetLang(c *gin.Context) string {
	if c == nil {
		return code.GetGlobalDefaultLang()
	}
	if v, ok := c.Get(ContextLangKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return code.GetGlobalDefaultLang()
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

func GetAccessHost(c *gin.Context) string {
	AccessProto := ""
	if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto == "" {
		AccessProto = "http" + "://"
	} else {
		AccessProto = proto + "://"
	}
	return AccessProto + c.Request.Host
}

// ToResponse output to browser: unified use of Res
// ToResponse 输出到浏览器：统一使用 Res
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.MsgIn(GetLang(r.Ctx)),
	}
	if codeObj.HaveData() {
		content.Data = codeObj.Data()
	}
	if codeObj.HaveDetails() {
		content.Details = codeObj.Details()
	}

	r.send(codeObj.StatusCode(), content)
}

// ResList is Res with data always present, so an empty list is sent as []
// ResList 与 Res 相同，但 data 字段总是输出
type ResList struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
	Count   *int        `json:"count"`
}

// ToResponseList outputs a list with its element count; pass a non-nil slice to get [] instead of null
// ToResponseList 输出列表及数量，传入非 nil 切片时空列表输出 []
func (r *Response) ToResponseList(codeObj *code.Code, list interface{}, count int) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := ResList{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.MsgIn(GetLang(r.Ctx)),
		Data:    list,
		Count:   &count,
	}

	r.send(codeObj.StatusCode(), content)
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.JSON(statusCode, content)
}
