// Package domain 定义领域模型和接口
package domain

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const (
	// TitleMaxLength 标题最大字符数
	TitleMaxLength = 200
	// TagsMaxLength 标签串最大字符数
	TagsMaxLength = 500
	// TagSeparator 标签分隔符
	TagSeparator = ","
)

// Note 笔记领域模型
type Note struct {
	ID        int64
	Title     string
	Content   string
	Tags      Tags
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch moves UpdatedAt to now, strictly after its previous value
// Touch 刷新 UpdatedAt，保证严格大于原值
func (n *Note) Touch(now time.Time) {
	if !now.After(n.UpdatedAt) {
		now = n.UpdatedAt.Add(time.Microsecond)
	}
	n.UpdatedAt = now
}

// Tags is the raw comma separated tag string as stored
// Tags 原样存储的逗号分隔标签串
type Tags string

// Tokens splits on commas, trims each token and drops empty ones
// Tokens 按逗号拆分，去除首尾空白并丢弃空标签
func (t Tags) Tokens() []string {
	if strings.TrimSpace(string(t)) == "" {
		return nil
	}
	parts := strings.Split(string(t), TagSeparator)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Contains reports whether sub occurs anywhere in the raw string, ignoring case
// Contains 判断 sub 是否为原始标签串的子串（忽略大小写）
func (t Tags) Contains(sub string) bool {
	return containsFold(string(t), sub)
}

func (t Tags) String() string {
	return string(t)
}

// DistinctTags collects the case-sensitive unique tokens of all tag strings, sorted
// DistinctTags 汇总所有标签串中的去重标签（区分大小写），按字典序排序
func DistinctTags(all []Tags) []string {
	seen := make(map[string]struct{})
	for _, t := range all {
		for _, token := range t.Tokens() {
			seen[token] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for token := range seen {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// NoteFilter list filter, zero values mean no filter
// NoteFilter 列表过滤条件，空值表示不过滤
type NoteFilter struct {
	// Search 匹配标题或正文（忽略大小写的子串）
	Search string
	// Tag 匹配原始标签串（忽略大小写的子串）
	Tag string
}

// IsEmpty 是否未设置任何条件
func (f NoteFilter) IsEmpty() bool {
	return f.Search == "" && f.Tag == ""
}

// Match applies search AND tag
// Match 同时满足 search 与 tag 条件
func (f NoteFilter) Match(n *Note) bool {
	if n == nil {
		return false
	}
	if f.Search != "" && !containsFold(n.Title, f.Search) && !containsFold(n.Content, f.Search) {
		return false
	}
	if f.Tag != "" && !n.Tags.Contains(f.Tag) {
		return false
	}
	return true
}

// NotePatch fields to change on update, nil means unchanged
// NotePatch 更新时要修改的字段，nil 表示不修改
type NotePatch struct {
	Title   *string
	Content *string
	Tags    *string
}

// IsEmpty 是否没有任何字段
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil
}

// Apply writes the supplied fields onto n
// Apply 将已提供的字段写入 n
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = Tags(*p.Tags)
	}
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	// Caser keeps state, one per call
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(sub))
}
