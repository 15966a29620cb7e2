// Package dao 实现数据访问层
package dao

import (
	"context"

	"github.com/haierkeys/simple-note-service/internal/model"
	"github.com/haierkeys/simple-note-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dao 数据访问对象，持有数据库连接与写队列
type Dao struct {
	db         *gorm.DB
	ctx        context.Context
	logger     *zap.Logger
	writeQueue *writequeue.Manager
}

// DaoOption Dao 配置选项
type DaoOption func(*Dao)

// WithLogger 设置日志器
func WithLogger(lg *zap.Logger) DaoOption {
	return func(d *Dao) {
		d.logger = lg
	}
}

// WithWriteQueue serializes writes through wq
// WithWriteQueue 通过 wq 串行化写操作
func WithWriteQueue(wq *writequeue.Manager) DaoOption {
	return func(d *Dao) {
		d.writeQueue = wq
	}
}

// New 创建 Dao
func New(db *gorm.DB, ctx context.Context, opts ...DaoOption) *Dao {
	d := &Dao{db: db, ctx: ctx}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.ctx == nil {
		d.ctx = context.Background()
	}
	return d
}

// DB returns a session bound to ctx, falling back to the Dao context
// DB 返回绑定 ctx 的会话
func (d *Dao) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = d.ctx
	}
	return d.db.WithContext(ctx)
}

// Logger 返回日志器
func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

// ExecuteWrite runs fn in one transaction, queued behind earlier writes on key
// ExecuteWrite 在单个事务中执行 fn，同一 key 的写操作按顺序排队执行
func (d *Dao) ExecuteWrite(ctx context.Context, key string, fn func(tx *gorm.DB) error) error {
	run := func() error {
		return d.DB(ctx).Transaction(fn)
	}
	if d.writeQueue == nil {
		return run()
	}
	return d.writeQueue.Execute(ctx, key, run)
}

// AutoMigrate 自动迁移所有模型
func (d *Dao) AutoMigrate() error {
	return model.AutoMigrate(d.DB(d.ctx), "")
}

// Ping 检查数据库连接
func (d *Dao) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Maintain SQLite 下截断 WAL 并执行 PRAGMA optimize，其他数据库只检查连接
func (d *Dao) Maintain(ctx context.Context) error {
	if d.db.Dialector.Name() != "sqlite" {
		return d.Ping(ctx)
	}
	db := d.DB(ctx)
	if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return err
	}
	return db.Exec("PRAGMA optimize").Error
}
