package domain

import (
	"bytes"

	"github.com/bytedance/sonic"
)

// Field is an optional JSON value that tells absent, null and present apart
// Field 可选 JSON 字段，区分未提供、null 与有值三种状态
type Field[T any] struct {
	// Set 字段出现在请求体中（包括 null）
	Set bool
	// Null 字段显式为 null
	Null bool
	// Value 字段值，仅 Set && !Null 时有效
	Value T
}

// NewField returns a present Field
func NewField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// UnmarshalJSON only runs when the key is present in the object
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return sonic.Unmarshal(data, &f.Value)
}

// MarshalJSON writes null for absent or null fields
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present() {
		return []byte("null"), nil
	}
	return sonic.Marshal(f.Value)
}

// Present 字段有值
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

// Ptr returns a pointer to the value, nil unless present
// Ptr 有值时返回值指针，否则返回 nil
func (f Field[T]) Ptr() *T {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}
