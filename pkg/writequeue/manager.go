// Package writequeue serializes write operations that share a key
// Package writequeue 按键串行化写操作
// Writes on the same key run one at a time in FIFO order, different keys run in parallel
// 同一个键的写操作按 FIFO 顺序逐个执行，不同键之间并行
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 等待写操作结果超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity pending operations per key, default 100
	QueueCapacity int
	// WriteTimeout how long a caller waits for its operation, default 30s
	WriteTimeout time.Duration
	// IdleTimeout idle queues are reclaimed after this, default 10m
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

// writeOp states, a caller that gave up moves a pending op to opAbandoned so the worker skips it
// writeOp 状态：调用方放弃时将 pending 置为 abandoned，worker 不再执行
const (
	opPending int32 = iota
	opRunning
	opAbandoned
)

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
	state  atomic.Int32
}

// keyQueue one FIFO per key
// keyQueue 单个键对应的队列
type keyQueue struct {
	key      string
	ch       chan *writeOp
	lastUsed atomic.Int64
	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (q *keyQueue) stop() {
	q.stopOnce.Do(func() {
		q.stopped.Store(true)
		close(q.stopCh)
	})
}

// Manager manages write queues for all keys
// Manager 管理所有键的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*keyQueue
	closed bool

	executed atomic.Int64

	ctx         context.Context
	cancel      context.CancelFunc
	cleanupDone chan struct{}
	cleanupWg   sync.WaitGroup
}

// New creates write queue manager
// New 创建写队列管理器，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config:      c,
		logger:      logger,
		queues:      make(map[string]*keyQueue),
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute runs fn on the queue for key and waits for its result
// Execute 在 key 对应的队列上执行 fn 并等待结果
func (m *Manager) Execute(ctx context.Context, key string, fn func() error) error {
	queue := m.getOrCreateQueue(key)
	if queue == nil {
		return ErrWriteQueueClosed
	}

	op := &writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case queue.ch <- op:
	default:
		return ErrWriteQueueFull
	}

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var giveUp error
	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		giveUp = ctx.Err()
	case <-timer.C:
		giveUp = ErrWriteTimeout
	case <-m.ctx.Done():
		giveUp = ErrWriteQueueClosed
	}

	// An op that never started is dropped. One already running is waited for,
	// so an error returned here always means fn did not take effect.
	// 尚未开始的操作直接放弃；已开始的操作等待其结果，保证返回错误时 fn 未生效
	if op.state.CompareAndSwap(opPending, opAbandoned) {
		return giveUp
	}
	return <-op.result
}

func (m *Manager) getOrCreateQueue(key string) *keyQueue {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	if q, ok := m.queues[key]; ok && !q.stopped.Load() {
		q.lastUsed.Store(time.Now().UnixNano())
		return q
	}

	q := &keyQueue{
		key:    key,
		ch:     make(chan *writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	q.lastUsed.Store(time.Now().UnixNano())
	m.queues[key] = q

	go m.worker(q)

	m.logger.Debug("created write queue", zap.String("key", key))
	return q
}

func (m *Manager) worker(q *keyQueue) {
	defer close(q.done)
	for {
		select {
		case <-q.stopCh:
			m.drainQueue(q)
			return
		case op := <-q.ch:
			m.executeOp(q, op)
		}
	}
}

func (m *Manager) executeOp(q *keyQueue, op *writeOp) {
	q.lastUsed.Store(time.Now().UnixNano())

	if !op.state.CompareAndSwap(opPending, opRunning) {
		return
	}
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}

	op.result <- op.fn()
	m.executed.Add(1)
}

func (m *Manager) drainQueue(q *keyQueue) {
	for {
		select {
		case op := <-q.ch:
			m.executeOp(q, op)
		default:
			return
		}
	}
}

func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.cleanupDone:
			return
		case <-ticker.C:
			m.doCleanup()
		}
	}
}

// doCleanup 回收空闲且为空的队列
func (m *Manager) doCleanup() {
	threshold := time.Now().Add(-m.config.IdleTimeout).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, q := range m.queues {
		if q.lastUsed.Load() < threshold && len(q.ch) == 0 {
			q.stop()
			delete(m.queues, key)
			m.logger.Debug("cleaned up idle write queue", zap.String("key", key))
		}
	}
}

// Shutdown stops accepting writes and waits for queued ones to finish
// Shutdown 关闭管理器，等待已入队的写操作完成，ctx 控制等待时长
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*keyQueue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down")
	close(m.cleanupDone)

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			q.stop()
		}
		for _, q := range queues {
			<-q.done
		}
		m.cleanupWg.Wait()
		close(done)
	}()

	defer m.cancel()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		return ctx.Err()
	}
}

// QueueCount returns the number of live queues
// QueueCount 返回当前活跃队列数量
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// QueuedCount returns operations waiting on key
// QueuedCount 返回指定键等待中的操作数
func (m *Manager) QueuedCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.queues[key]; ok {
		return len(q.ch)
	}
	return 0
}

// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Metrics write queue manager metrics
// Metrics 写队列管理器指标
type Metrics struct {
	QueueCapacity int   `json:"queueCapacity"`
	ActiveQueues  int   `json:"activeQueues"`
	Executed      int64 `json:"executed"`
	IsClosed      bool  `json:"isClosed"`
}

// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	m.mu.Lock()
	active, closed := len(m.queues), m.closed
	m.mu.Unlock()

	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveQueues:  active,
		Executed:      m.executed.Load(),
		IsClosed:      closed,
	}
}
