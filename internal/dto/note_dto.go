// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/simple-note-service/internal/domain"
	"github.com/haierkeys/simple-note-service/pkg/timex"

	"github.com/bytedance/sonic"
)

// NoteDTO Note data transfer object, the wire form of a note
// NoteDTO 笔记数据传输对象，即接口输出的笔记格式
type NoteDTO struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Tags      string     `json:"tags"`
	CreatedAt timex.Time `json:"created_at"`
	UpdatedAt timex.Time `json:"updated_at"`
}

// NoteFromDomain 领域模型转 DTO
func NoteFromDomain(n *domain.Note) *NoteDTO {
	if n == nil {
		return nil
	}
	return &NoteDTO{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      n.Tags.String(),
		CreatedAt: timex.Time(n.CreatedAt),
		UpdatedAt: timex.Time(n.UpdatedAt),
	}
}

// NotesFromDomain converts a list, never returning nil
// NotesFromDomain 批量转换，结果不为 nil
func NotesFromDomain(list []*domain.Note) []*NoteDTO {
	out := make([]*NoteDTO, 0, len(list))
	for _, n := range list {
		out = append(out, NoteFromDomain(n))
	}
	return out
}

// EncodeNote serializes a note to its wire format
// EncodeNote 将笔记序列化为接口格式
func EncodeNote(n *NoteDTO) ([]byte, error) {
	return sonic.Marshal(n)
}

// DecodeNote parses the wire format back into a note
// DecodeNote 将接口格式解析为笔记
func DecodeNote(data []byte) (*NoteDTO, error) {
	n := &NoteDTO{}
	if err := sonic.Unmarshal(data, n); err != nil {
		return nil, err
	}
	return n, nil
}

// NoteCreateRequest Request body for creating a note
// NoteCreateRequest 创建笔记的请求体
type NoteCreateRequest struct {
	Title   domain.Field[string] `json:"title"`
	Content domain.Field[string] `json:"content"`
	Tags    domain.Field[string] `json:"tags"`

	keys int
}

// UnmarshalJSON records how many keys the object carried, unknown keys included
func (r *NoteCreateRequest) UnmarshalJSON(data []byte) error {
	type plain NoteCreateRequest
	n, err := countKeys(data)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	r.keys = n
	return nil
}

// IsEmpty reports an empty object or null body
// IsEmpty 请求体为 {} 或 null
func (r *NoteCreateRequest) IsEmpty() bool {
	return r == nil || (r.keys == 0 && !r.Title.Set && !r.Content.Set && !r.Tags.Set)
}

// NoteUpdateRequest Request body for updating a note, only supplied fields change
// NoteUpdateRequest 更新笔记的请求体，仅修改提供的字段
type NoteUpdateRequest struct {
	Title   domain.Field[string] `json:"title"`
	Content domain.Field[string] `json:"content"`
	Tags    domain.Field[string] `json:"tags"`

	keys int
}

func (r *NoteUpdateRequest) UnmarshalJSON(data []byte) error {
	type plain NoteUpdateRequest
	n, err := countKeys(data)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	r.keys = n
	return nil
}

// IsEmpty 请求体为 {} 或 null
func (r *NoteUpdateRequest) IsEmpty() bool {
	return r == nil || (r.keys == 0 && !r.Title.Set && !r.Content.Set && !r.Tags.Set)
}

// countKeys 统计 JSON 对象的键数，null 为 0，非对象返回错误
func countKeys(data []byte) (int, error) {
	var obj map[string]interface{}
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return 0, err
	}
	return len(obj), nil
}

// NoteListRequest Query parameters for listing notes, empty means no filter
// NoteListRequest 笔记列表查询参数，空值表示不过滤
type NoteListRequest struct {
	Search string `json:"search" form:"search" binding:"max=200"`
	Tag    string `json:"tag" form:"tag" binding:"max=200"`
}

// NoteIDRequest Path parameter addressing one note
// NoteIDRequest 路径中的笔记 ID
type NoteIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}
