package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString joins all messages
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString returns field => message
func (v ValidErrors) MapsToString() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

// BindAndValid binds query/form/json by content type and validates
// BindAndValid 按 Content-Type 绑定参数并校验
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	return toValidErrors(c, c.ShouldBind(v))
}

// BindJSONAndValid binds a JSON body and validates
// BindJSONAndValid 绑定 JSON 请求体并校验
func BindJSONAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	return toValidErrors(c, c.ShouldBindJSON(v))
}

// BindUriAndValid binds path params and validates
// BindUriAndValid 绑定路径参数并校验
func BindUriAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	return toValidErrors(c, c.ShouldBindUri(v))
}

func toValidErrors(c *gin.Context, err error) (bool, ValidErrors) {
	if err == nil {
		return true, nil
	}

	var errs ValidErrors

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs = append(errs, &ValidError{Key: "body", Message: err.Error()})
		return false, errs
	}

	trans, _ := c.Value("trans").(ut.Translator)
	for _, e := range verrs {
		msg := e.Error()
		if trans != nil {
			msg = e.Translate(trans)
		}
		errs = append(errs, &ValidError{Key: e.Field(), Message: msg})
	}

	return false, errs
}
