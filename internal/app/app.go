// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/simple-note-service/internal/dao"
	"github.com/haierkeys/simple-note-service/internal/domain"
	"github.com/haierkeys/simple-note-service/internal/service"
	pkgapp "github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	writeQueueMgr *writequeue.Manager

	// Repository 层
	NoteRepo domain.NoteRepository

	// Service 层
	NoteService service.NoteService

	// StartTime 容器创建时间，用于计算运行时长
	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(db, context.Background(),
		dao.WithLogger(logger),
		dao.WithWriteQueue(a.writeQueueMgr),
	)

	if cfg.Database.AutoMigrate {
		if err := a.Dao.AutoMigrate(); err != nil {
			_ = a.writeQueueMgr.Shutdown(context.Background())
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)

	// 初始化 Service 层（依赖注入）
	a.NoteService = service.NewNoteService(a.NoteRepo, logger.Named("note"), &service.ServiceConfig{})

	logger.Info("App container initialized successfully",
		zap.String("database", cfg.Database.Type),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// Close 释放应用容器持有的数据库连接
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Name:      Name,
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// WriteQueueManager 获取 Write Queue Manager
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Write Queue Manager -> Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	// 标记关闭
	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	var errs []error

	// 1. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}

	// 2. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}
