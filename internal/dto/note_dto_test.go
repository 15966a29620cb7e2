package dto

import (
	"testing"
	"time"

	"github.com/haierkeys/simple-note-service/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNote_Format(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 7, 6, 123456000, time.UTC)
	n := NoteFromDomain(&domain.Note{
		ID:        3,
		Title:     "t",
		Content:   "c",
		Tags:      "a,b",
		CreatedAt: at,
		UpdatedAt: at,
	})

	data, err := EncodeNote(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3,
		"title": "t",
		"content": "c",
		"tags": "a,b",
		"created_at": "2024-03-09T08:07:06.123456Z",
		"updated_at": "2024-03-09T08:07:06.123456Z"
	}`, string(data))
}

// TestNoteRoundTrip_Property 序列化后再解析得到相同的笔记
func TestNoteRoundTrip_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(n)) == n", prop.ForAll(
		func(id int64, title, content, tags string, micros int64) bool {
			at := time.UnixMicro(micros).UTC()
			in := &NoteDTO{
				ID:        id,
				Title:     title,
				Content:   content,
				Tags:      tags,
				CreatedAt: NoteFromDomain(&domain.Note{CreatedAt: at}).CreatedAt,
				UpdatedAt: NoteFromDomain(&domain.Note{UpdatedAt: at.Add(time.Second)}).UpdatedAt,
			}

			data, err := EncodeNote(in)
			if err != nil {
				return false
			}
			out, err := DecodeNote(data)
			if err != nil {
				return false
			}

			return out.ID == in.ID &&
				out.Title == in.Title &&
				out.Content == in.Content &&
				out.Tags == in.Tags &&
				out.CreatedAt.Equal(in.CreatedAt) &&
				out.UpdatedAt.Equal(in.UpdatedAt)
		},
		gen.Int64Range(1, 1<<40),
		gen.AnyString(),
		gen.AnyString(),
		gen.AlphaString(),
		gen.Int64Range(0, 4102444800000000),
	))

	properties.TestingRun(t)
}

func TestDecodeNote_Invalid(t *testing.T) {
	_, err := DecodeNote([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}

func TestCreateRequest_IsEmpty(t *testing.T) {
	var nilReq *NoteCreateRequest
	assert.True(t, nilReq.IsEmpty())

	var r NoteCreateRequest
	require.NoError(t, sonic.Unmarshal([]byte(`{}`), &r))
	assert.True(t, r.IsEmpty())

	r = NoteCreateRequest{}
	require.NoError(t, sonic.Unmarshal([]byte(`null`), &r))
	assert.True(t, r.IsEmpty())

	// any key makes the body non-empty, even null or unknown ones
	r = NoteCreateRequest{}
	require.NoError(t, sonic.Unmarshal([]byte(`{"unknown":1}`), &r))
	assert.False(t, r.IsEmpty())

	r = NoteCreateRequest{}
	require.NoError(t, sonic.Unmarshal([]byte(`{"title":null}`), &r))
	assert.False(t, r.IsEmpty())
	assert.False(t, r.Title.Present())

	r = NoteCreateRequest{}
	assert.Error(t, sonic.Unmarshal([]byte(`[1,2]`), &r))

	r = NoteCreateRequest{}
	require.NoError(t, sonic.Unmarshal([]byte(`{"tags":""}`), &r))
	assert.False(t, r.IsEmpty())
}

func TestUpdateRequest_IsEmpty(t *testing.T) {
	var r NoteUpdateRequest
	require.NoError(t, sonic.Unmarshal([]byte(`{}`), &r))
	assert.True(t, r.IsEmpty())

	r = NoteUpdateRequest{}
	require.NoError(t, sonic.Unmarshal([]byte(`{"tags":null}`), &r))
	assert.False(t, r.IsEmpty())
	assert.True(t, r.Tags.Set)
	assert.False(t, r.Tags.Present())
}

func TestNotesFromDomain_NeverNil(t *testing.T) {
	out := NotesFromDomain(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
