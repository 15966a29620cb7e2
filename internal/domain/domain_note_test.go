package domain

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_Tokens(t *testing.T) {
	cases := []struct {
		raw  Tags
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"work", []string{"work"}},
		{"work, important", []string{"work", "important"}},
		{" Work, home ", []string{"Work", "home"}},
		{"a,,b, ,c", []string{"a", "b", "c"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.raw.Tokens(), "raw=%q", c.raw)
	}
}

func TestTags_ContainsIsSubstring(t *testing.T) {
	assert.True(t, Tags("Work,urgent").Contains("work"))
	assert.True(t, Tags("homework").Contains("work"))
	assert.True(t, Tags("work").Contains("wor"))
	assert.False(t, Tags("home").Contains("work"))
	assert.True(t, Tags("").Contains(""))
}

func TestDistinctTags_CaseSensitive(t *testing.T) {
	got := DistinctTags([]Tags{"work,important", "Work, home ", ""})
	assert.Equal(t, []string{"Work", "home", "important", "work"}, got)

	assert.Empty(t, DistinctTags(nil))
	assert.NotNil(t, DistinctTags(nil))
}

func TestNoteFilter_Match(t *testing.T) {
	n := &Note{Title: "Flask tips", Content: "uses Jinja", Tags: "Work,urgent"}

	assert.True(t, NoteFilter{}.Match(n))
	assert.True(t, NoteFilter{Search: "flask"}.Match(n))
	assert.True(t, NoteFilter{Search: "JINJA"}.Match(n))
	assert.False(t, NoteFilter{Search: "django"}.Match(n))
	assert.True(t, NoteFilter{Tag: "work"}.Match(n))
	assert.True(t, NoteFilter{Search: "flask", Tag: "urgent"}.Match(n))
	assert.False(t, NoteFilter{Search: "flask", Tag: "home"}.Match(n))
	assert.False(t, NoteFilter{}.Match(nil))

	// search does not look at tags
	assert.False(t, NoteFilter{Search: "urgent"}.Match(n))
}

func TestNoteFilter_UnicodeFolding(t *testing.T) {
	n := &Note{Title: "Ωmega", Content: "ÉTÉ"}
	assert.True(t, NoteFilter{Search: "été"}.Match(n))
	assert.True(t, NoteFilter{Search: "ωMEGA"}.Match(n))
}

func TestNote_TouchStrictlyForward(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := &Note{CreatedAt: base, UpdatedAt: base}

	n.Touch(base)
	assert.True(t, n.UpdatedAt.After(base))

	later := base.Add(time.Hour)
	n.Touch(later)
	assert.Equal(t, later, n.UpdatedAt)

	n.Touch(base)
	assert.True(t, n.UpdatedAt.After(later))
}

func TestNotePatch_Apply(t *testing.T) {
	title := "new"
	empty := ""
	n := &Note{Title: "old", Content: "body", Tags: "a,b"}

	assert.True(t, NotePatch{}.IsEmpty())

	p := NotePatch{Title: &title, Tags: &empty}
	assert.False(t, p.IsEmpty())
	p.Apply(n)

	assert.Equal(t, "new", n.Title)
	assert.Equal(t, "body", n.Content)
	assert.Equal(t, Tags(""), n.Tags)
}

type patchBody struct {
	Title Field[string] `json:"title"`
	Tags  Field[string] `json:"tags"`
}

func TestField_TriState(t *testing.T) {
	var b patchBody
	require.NoError(t, sonic.Unmarshal([]byte(`{"title":null}`), &b))

	assert.True(t, b.Title.Set)
	assert.True(t, b.Title.Null)
	assert.False(t, b.Title.Present())
	assert.Nil(t, b.Title.Ptr())
	assert.False(t, b.Tags.Set)

	b = patchBody{}
	require.NoError(t, sonic.Unmarshal([]byte(`{"title":"x","tags":""}`), &b))
	require.NotNil(t, b.Title.Ptr())
	assert.Equal(t, "x", *b.Title.Ptr())
	assert.True(t, b.Tags.Present())
	assert.Equal(t, "", *b.Tags.Ptr())

	b = patchBody{}
	assert.Error(t, sonic.Unmarshal([]byte(`{"title":12}`), &b))
}
