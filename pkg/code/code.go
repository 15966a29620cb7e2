package code

import (
	"fmt"
	"net/http"
)

type Code struct {
	// 状态码
	code int
	// HTTP 状态码
	httpStatus int
	// 状态
	status bool
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}

// NewError registers an error code; duplicated codes panic at init time
// NewError 注册错误码，重复的错误码会在初始化时 panic
func NewError(code int, httpStatus int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.en

	return &Code{code: code, httpStatus: httpStatus, status: false, Lang: l}
}

var sussCodes = map[int]string{}

// NewSuss registers a success code
// NewSuss 注册成功码
func NewSuss(code int, httpStatus int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.en

	return &Code{code: code, httpStatus: httpStatus, status: true, Lang: l}
}

// Clone 创建一个新的 Code 副本
// Registered codes are shared package variables, so every With* call works on a copy.
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		httpStatus: e.httpStatus,
		status:     e.status,
		Lang:       e.Lang,
		details:    []string{},
	}
}

func (e *Code) Error() string {
	if e.haveDetails && len(e.details) > 0 {
		return fmt.Sprintf("%s: %v", e.Msg(), e.details)
	}
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

// MsgIn returns the message in the given language
func (e *Code) MsgIn(language string) string {
	return e.Lang.GetMessageIn(language)
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.cloneWithState()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.cloneWithState()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// Is lets errors.Is match a code against its registered template
// Is 让 errors.Is 可以按错误码匹配
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code && t.status == e.status
}

func (e *Code) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}

func (e *Code) cloneWithState() *Code {
	c := e.Clone()
	c.data = e.data
	c.haveData = e.haveData
	c.details = append(c.details, e.details...)
	c.haveDetails = e.haveDetails
	return c
}
