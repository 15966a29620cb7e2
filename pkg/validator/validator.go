// Package validator wires go-playground/validator into gin binding with translations
// Package validator 将 go-playground/validator 接入 gin binding 并注册多语言翻译
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/pkg/errors"
)

// CustomValidator implements binding.StructValidator
type CustomValidator struct {
	once     sync.Once
	Validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct validates structs and pointers to structs, anything else passes
func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}

	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		v.lazyinit()
		return v.Validate.Struct(obj)
	default:
		return nil
	}
}

func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.Validate = validator.New()
		v.Validate.SetTagName("binding")
		// field names in messages follow the json/form/uri tag
		// 错误信息中的字段名使用 json/form/uri 标签
		v.Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// Install replaces gin's default validator and returns a translator set for en and zh
// Install 替换 gin 默认验证器，返回包含 en 与 zh 的翻译器
func Install() (*ut.UniversalTranslator, error) {
	cv := NewCustomValidator()
	binding.Validator = cv

	validate := cv.Engine().(*validator.Validate)

	uni := ut.New(en.New(), en.New(), zh.New())

	enTran, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, errors.Wrap(err, "register en translations")
	}
	zhTran, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, errors.Wrap(err, "register zh translations")
	}

	return uni, nil
}
