package routers

import (
	"context"
	"embed"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/haierkeys/simple-note-service/internal/app"
	"github.com/haierkeys/simple-note-service/internal/dao"
	"github.com/haierkeys/simple-note-service/pkg/validator"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testConfig = `
server:
  run-mode: test
database:
  type: sqlite
  path: ":memory:"
app:
  rate-limit-per-second: 0
log:
  file: ""
`

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	app    *app.App
	router *gin.Engine
}

// newTestServer 每个测试使用独立的内存数据库与路由
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg, err := app.ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), nil)
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	uni, err := validator.Install()
	require.NoError(t, err)

	return &testServer{app: a, router: NewRouter(embed.FS{}, a, uni)}
}

type envelope struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Details []string        `json:"details"`
}

type noteBody struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Tags      string `json:"tags"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) create(t *testing.T, body string) noteBody {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/notes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var n noteBody
	require.NoError(t, sonic.Unmarshal(env.Data, &n))
	return n
}

func decodeNotes(t *testing.T, env envelope) []noteBody {
	t.Helper()
	var list []noteBody
	require.NoError(t, sonic.Unmarshal(env.Data, &list))
	return list
}

func TestCreateNote(t *testing.T) {
	s := newTestServer(t)

	n := s.create(t, `{"title":"  Hello ","content":"World","tags":" a,b "}`)
	assert.Greater(t, n.ID, int64(0))
	assert.Equal(t, "Hello", n.Title)
	assert.Equal(t, "World", n.Content)
	assert.Equal(t, "a,b", n.Tags)
	assert.NotEmpty(t, n.CreatedAt)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)

	w, env := s.do(t, http.MethodGet, "/api/notes/"+itoa(n.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got noteBody
	require.NoError(t, sonic.Unmarshal(env.Data, &got))
	assert.Equal(t, n, got)
}

func TestCreateNote_BadBodies(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		code   int
		detail string
	}{
		{"empty object", `{}`, 40001, ""},
		{"null", `null`, 40001, ""},
		{"empty body", ``, 40001, ""},
		{"null fields", `{"title":null,"content":null}`, 40002, "Title is required"},
		{"unknown fields only", `{"foo":1}`, 40002, "Content is required"},
		{"array", `[1,2]`, 400, ""},
		{"broken json", `{"title":`, 400, ""},
		{"blank title", `{"title":"   ","content":"x"}`, 40002, "Title is required"},
		{"missing content", `{"title":"x"}`, 40002, "Content is required"},
		{"title too long", `{"title":"` + strings.Repeat("é", 201) + `","content":"x"}`, 40002, "Title must be at most 200 characters"},
		{"tags too long", `{"title":"x","content":"x","tags":"` + strings.Repeat("t", 501) + `"}`, 40002, "Tags must be at most 500 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodPost, "/api/notes", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.code, env.Code)
			assert.False(t, env.Status)
			if tt.detail != "" {
				assert.Contains(t, env.Details, tt.detail)
			}
		})
	}

	// 校验失败不会写入
	_, env := s.do(t, http.MethodGet, "/api/notes", "")
	assert.Empty(t, decodeNotes(t, env))
}

func TestGetNote_NotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/notes/999", "/api/notes/0", "/api/notes/-3", "/api/notes/abc"} {
		w, env := s.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, 40401, env.Code, path)
		assert.Equal(t, "Note not found", env.Message, path)
	}
}

func TestListNotes(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)

	first := s.create(t, `{"title":"Groceries","content":"milk","tags":"home"}`)
	second := s.create(t, `{"title":"Report","content":"quarterly NUMBERS","tags":"work,important"}`)
	third := s.create(t, `{"title":"Chores","content":"laundry","tags":"homework"}`)

	_, env = s.do(t, http.MethodGet, "/api/notes", "")
	list := decodeNotes(t, env)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 3, *env.Count)

	_, env = s.do(t, http.MethodGet, "/api/notes?search=numbers", "")
	list = decodeNotes(t, env)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	// 标签按子串匹配
	_, env = s.do(t, http.MethodGet, "/api/notes?tag=WORK", "")
	list = decodeNotes(t, env)
	require.Len(t, list, 2)
	assert.Equal(t, third.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	_, env = s.do(t, http.MethodGet, "/api/notes?search=report&tag=home", "")
	assert.Empty(t, decodeNotes(t, env))

	w, env = s.do(t, http.MethodGet, "/api/notes?search="+strings.Repeat("x", 201), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 400, env.Code)
	assert.NotEmpty(t, env.Details)
}

func TestUpdateNote(t *testing.T) {
	s := newTestServer(t)
	n := s.create(t, `{"title":"Old","content":"Body","tags":"a"}`)
	path := "/api/notes/" + itoa(n.ID)

	w, env := s.do(t, http.MethodPut, path, `{"title":" New "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got noteBody
	require.NoError(t, sonic.Unmarshal(env.Data, &got))
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "Body", got.Content)
	assert.Equal(t, "a", got.Tags)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.Greater(t, got.UpdatedAt, n.UpdatedAt)

	// 空字符串清空标签
	_, env = s.do(t, http.MethodPut, path, `{"tags":""}`)
	require.NoError(t, sonic.Unmarshal(env.Data, &got))
	assert.Equal(t, "", got.Tags)

	w, env = s.do(t, http.MethodPut, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40001, env.Code)

	// a body with only null or unknown keys changes nothing but updated_at
	before := got
	for _, body := range []string{`{"tags":null}`, `{"foo":1}`} {
		w, env = s.do(t, http.MethodPut, path, body)
		require.Equal(t, http.StatusOK, w.Code, body)
		require.NoError(t, sonic.Unmarshal(env.Data, &got))
		assert.Equal(t, before.Title, got.Title)
		assert.Equal(t, before.Tags, got.Tags)
		assert.Greater(t, got.UpdatedAt, before.UpdatedAt)
		before = got
	}

	w, env = s.do(t, http.MethodPut, path, `{"content":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "Content cannot be empty")

	// 不存在的笔记优先返回 404
	w, env = s.do(t, http.MethodPut, "/api/notes/999", `{"title":""}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, env.Code)

	_, env = s.do(t, http.MethodGet, path, "")
	require.NoError(t, sonic.Unmarshal(env.Data, &got))
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "Body", got.Content)
}

func TestDeleteNote(t *testing.T) {
	s := newTestServer(t)
	n := s.create(t, `{"title":"T","content":"C"}`)
	path := "/api/notes/" + itoa(n.ID)

	w, env := s.do(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Status)
	assert.Equal(t, "Note deleted successfully", env.Message)

	w, _ = s.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, env.Code)
}

func TestTags(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	s.create(t, `{"title":"a","content":"a","tags":"work, home"}`)
	s.create(t, `{"title":"b","content":"b","tags":"Work,important"}`)
	s.create(t, `{"title":"c","content":"c"}`)

	_, env = s.do(t, http.MethodGet, "/api/tags", "")
	var tags []string
	require.NoError(t, sonic.Unmarshal(env.Data, &tags))
	assert.Equal(t, []string{"Work", "home", "important", "work"}, tags)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var h struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	require.NoError(t, sonic.Unmarshal(env.Data, &h))
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "connected", h.Database)

	require.NoError(t, s.app.Close())

	w, env = s.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, sonic.Unmarshal(env.Data, &h))
	assert.Equal(t, "unhealthy", h.Status)
}

func TestVersionAndIndex(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	var v struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	require.NoError(t, sonic.Unmarshal(env.Data, &v))
	assert.Equal(t, app.Name, v.Name)
	assert.Equal(t, app.Version, v.Version)

	w, _ = s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), app.Name)
}

func TestUnknownRouteAndLang(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, env.Code)

	w, env = s.do(t, http.MethodGet, "/api/notes/42?lang=zh", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "笔记不存在", env.Message)

	// 语言只作用于当前请求
	_, env = s.do(t, http.MethodGet, "/api/notes/42", "")
	assert.Equal(t, "Note not found", env.Message)
}

func TestTraceHeader(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/notes", "", "X-Trace-ID", "trace-123")
	assert.Equal(t, "trace-123", w.Header().Get("X-Trace-ID"))

	w, _ = s.do(t, http.MethodGet, "/api/notes", "")
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestPrivateRouter(t *testing.T) {
	r := NewPrivateRouterWithLogger("release", zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memstats")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, DefaultPrefix+"/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
