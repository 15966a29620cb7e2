package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, lang string, err error) (int, AppError) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if lang != "" {
		c.Set(app.ContextLangKey, lang)
	}
	ErrorResponse(c, err)

	var body AppError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestErrorResponse_Code(t *testing.T) {
	status, body := respond(t, "", code.ErrorInvalidParams.WithDetails("title is required"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, code.ErrorInvalidParams.Code(), body.Code)
	assert.False(t, body.Status)
	assert.Equal(t, []string{"title is required"}, body.Details)
	assert.False(t, body.Timestamp.IsZero())
}

func TestErrorResponse_WrappedCodeInLang(t *testing.T) {
	status, body := respond(t, "zh_cn", fmt.Errorf("get: %w", code.ErrorNoteNotFound))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, code.ErrorNoteNotFound.MsgIn("zh_cn"), body.Message)
}

func TestErrorResponse_UnknownErrorIsHidden(t *testing.T) {
	status, body := respond(t, "", fmt.Errorf("dial tcp 10.0.0.3:5432: refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, code.ErrorServerInternal.Code(), body.Code)
	assert.NotContains(t, body.Message, "10.0.0.3")
	assert.Empty(t, body.Details)
}
