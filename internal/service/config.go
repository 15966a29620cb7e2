// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"time"

	"github.com/haierkeys/simple-note-service/pkg/timex"
)

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	// Now clock for note timestamps, defaults to UTC now truncated to microseconds
	// Now 笔记时间戳使用的时钟，默认为截断到微秒的 UTC 当前时间
	Now func() time.Time
	// ScanTimeout bounds a tag scan shared by concurrent callers, default 30s
	// ScanTimeout 多个调用方共享的标签扫描超时，默认 30 秒
	ScanTimeout time.Duration
}

const defaultScanTimeout = 30 * time.Second

func (c *ServiceConfig) now() time.Time {
	if c == nil || c.Now == nil {
		return timex.Now().Time()
	}
	return c.Now().UTC().Truncate(time.Microsecond)
}

func (c *ServiceConfig) scanTimeout() time.Duration {
	if c == nil || c.ScanTimeout <= 0 {
		return defaultScanTimeout
	}
	return c.ScanTimeout
}
