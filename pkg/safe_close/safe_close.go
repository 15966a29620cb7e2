// Package safe_close coordinates graceful shutdown of long running parts
// Package safe_close 协调各组件的优雅退出
package safe_close

import (
	"context"
	"sync"
)

// SafeClose 关闭协调器
// 组件通过 Attach 注册，SendCloseSignal 后由 WaitClosed 等待全部退出
type SafeClose struct {
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	mu      sync.Mutex
	closers []func(ctx context.Context) error
	err     error
}

func NewSafeClose() *SafeClose {
	ctx, cancel := context.WithCancel(context.Background())
	return &SafeClose{ctx: ctx, cancel: cancel}
}

// Attach runs fn in a goroutine; done is closed when shutdown is requested
// Attach 启动 fn，done 在收到关闭信号时关闭，closeSignal 由 fn 自行监听
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	go fn(func() { once.Do(s.wg.Done) }, s.ctx.Done())
}

// AttachCloser registers a function run once, in reverse order, on shutdown
// AttachCloser 注册退出时按逆序执行的关闭函数
func (s *SafeClose) AttachCloser(fn func(ctx context.Context) error) {
	s.mu.Lock()
	s.closers = append(s.closers, fn)
	s.mu.Unlock()
}

// SendCloseSignal 发送关闭信号并记录触发原因
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.err == nil && err != nil {
		s.err = err
	}
	s.mu.Unlock()
	s.cancel()
}

// CloseSignal closes when shutdown is requested
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.ctx.Done()
}

// WaitClosed waits for attached goroutines then runs closers, bounded by ctx
// WaitClosed 等待所有协程退出后逆序执行关闭函数，受 ctx 超时控制
func (s *SafeClose) WaitClosed(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Err returns the error passed to the first SendCloseSignal
func (s *SafeClose) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
