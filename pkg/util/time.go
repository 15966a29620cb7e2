package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses Go durations plus a day suffix ("7d"); bare numbers are seconds
// ParseDuration 解析时长，支持 Go 格式与天（7d），纯数字按秒处理
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	// 纯数字默认为秒
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}

// ParseDurationOr returns def when s is empty or invalid
// ParseDurationOr 解析失败或为空时返回 def
func ParseDurationOr(s string, def time.Duration) time.Duration {
	if strings.TrimSpace(s) == "" {
		return def
	}
	d, err := ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
