package middleware

import (
	"strings"

	"github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
// 语言来自 ?lang= 或 lang 请求头，只作用于当前请求
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		}

		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))
		if lang == "zh" {
			lang = "zh_cn"
		}

		if code.IsSupportedLang(lang) {
			c.Set(app.ContextLangKey, lang)
		}

		if uni != nil {
			// validator translators are registered as en / zh
			transKey := lang
			if strings.HasPrefix(lang, "zh") {
				transKey = "zh"
			}
			trans, found := uni.GetTranslator(transKey)
			if !found {
				trans, _ = uni.GetTranslator("en")
			}
			c.Set("trans", trans)
		}

		c.Next()
	}
}
