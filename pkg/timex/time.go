// Package timex provides a time type with a fixed wire format
// Package timex 提供固定序列化格式的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO-8601 layout used on the wire, always UTC with microseconds
// Layout 接口输出使用的 ISO-8601 格式，统一为 UTC 微秒精度
const Layout = "2006-01-02T15:04:05.000000Z07:00"

// Time wraps time.Time to control JSON and database encoding
// Time 封装 time.Time，控制 JSON 与数据库编码
type Time time.Time

// Now returns the current UTC time truncated to microseconds
// Now 返回截断到微秒的当前 UTC 时间
func Now() Time {
	return Time(time.Now().UTC().Truncate(time.Microsecond))
}

// MarshalJSON implements json.Marshaler
func (t Time) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + time.Time(t).UTC().Format(Layout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting any RFC 3339 value
// UnmarshalJSON 实现 json.Unmarshaler，接受任意 RFC 3339 格式
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Time(time.Time{})
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timex: parse %q: %w", s, err)
	}
	*t = Time(parsed.UTC())
	return nil
}

// Value implements driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if time.Time(t).IsZero() {
		return nil, nil
	}
	return time.Time(t).UTC(), nil
}

// Scan implements sql.Scanner
func (t *Time) Scan(v interface{}) error {
	switch value := v.(type) {
	case nil:
		*t = Time(time.Time{})
	case time.Time:
		*t = Time(value.UTC())
	case string:
		return t.parseStored(value)
	case []byte:
		return t.parseStored(string(value))
	default:
		return fmt.Errorf("timex: can not convert %v to timestamp", v)
	}
	return nil
}

// storedLayouts are the text forms drivers may hand back for a timestamp column
var storedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func (t *Time) parseStored(s string) error {
	for _, layout := range storedLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Time(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("timex: can not parse %q as timestamp", s)
}

// Time returns the underlying time.Time
func (t Time) Time() time.Time {
	return time.Time(t)
}

// String formats the time with Layout
func (t Time) String() string {
	return time.Time(t).UTC().Format(Layout)
}

// Equal reports whether t and u represent the same instant
func (t Time) Equal(u Time) bool {
	return time.Time(t).Equal(time.Time(u))
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}
