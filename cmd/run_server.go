package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	internalApp "github.com/haierkeys/simple-note-service/internal/app"
	"github.com/haierkeys/simple-note-service/internal/dao"
	"github.com/haierkeys/simple-note-service/internal/routers"
	"github.com/haierkeys/simple-note-service/internal/task"
	"github.com/haierkeys/simple-note-service/internal/upgrade"
	"github.com/haierkeys/simple-note-service/pkg/logger"
	"github.com/haierkeys/simple-note-service/pkg/safe_close"
	"github.com/haierkeys/simple-note-service/pkg/tracer"
	"github.com/haierkeys/simple-note-service/pkg/validator"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	logger            *zap.Logger             // 日志对象
	config            *internalApp.AppConfig  // 应用配置（注入的依赖）
	db                *gorm.DB                // 数据库连接
	ut                *ut.UniversalTranslator // 翻译器
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
}

func NewServer(runEnv *runFlags) (*Server, error) {

	// 使用 LoadConfig 直接加载配置到 AppConfig
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数优先于配置文件
	if len(runEnv.runMode) > 0 {
		appConfig.Server.RunMode = runEnv.runMode
	}
	if len(runEnv.port) > 0 {
		port := runEnv.port
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		appConfig.Server.HttpPort = port
	}
	gin.SetMode(appConfig.Server.RunMode)

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	// 初始化日志器（使用注入的配置）
	if err := initLoggerWithConfig(s, appConfig); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	// 初始化存储目录（使用注入的配置）
	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, s.abort(fmt.Errorf("initStorage: %w", err))
	}

	// 初始化数据库（使用注入的配置）
	db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), s.logger)
	if err != nil {
		return nil, s.abort(fmt.Errorf("initDatabase: %w", err))
	}
	s.db = db

	// 初始化 App Container（直接使用 AppConfig）
	app, err := internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		return nil, s.abort(fmt.Errorf("failed to create app container: %w", err))
	}
	s.app = app

	// 自动执行迁移任务
	if err := upgrade.Execute(db, s.logger, internalApp.Version, upgrade.VersionFileFor(configRealpath)); err != nil {
		return nil, s.abort(fmt.Errorf("upgrade.Execute: %w", err))
	}

	// 初始化验证器
	uni, err := validator.Install()
	if err != nil {
		return nil, s.abort(fmt.Errorf("initValidator: %w", err))
	}
	s.ut = uni

	// 分布式追踪（可选）
	if agent := appConfig.Tracer.JaegerAgent; appConfig.Tracer.Enabled && agent != "" {
		_, closer, err := tracer.NewJaegerTracer(internalApp.Name, agent)
		if err != nil {
			s.logger.Warn("jaeger tracer disabled", zap.String("agent", agent), zap.Error(err))
		} else {
			s.sc.AttachCloser(func(ctx context.Context) error {
				return closer.Close()
			})
			s.logger.Info("jaeger tracer enabled", zap.String("agent", agent))
		}
	}

	// 启动调度器
	if err := initScheduler(s); err != nil {
		return nil, s.abort(fmt.Errorf("initScheduler: %w", err))
	}

	banner := `
   _____ _                 __        _   __      __
  / ___/(_)___ ___  ____  / /__     / | / /___  / /____  _____
  \__ \/ / __ '__ \/ __ \/ / _ \   /  |/ / __ \/ __/ _ \/ ___/
 ___/ / / / / / / / /_/ / /  __/  / /|  / /_/ / /_/  __(__  )
/____/_/_/ /_/ /_/ .___/_/\___/  /_/ |_/\____/\__/\___/____/
                /_/                                          `
	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))

	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	// App Container 在所有 HTTP 服务退出后关闭（排空写队列 -> 关闭数据库）
	s.sc.AttachCloser(func(ctx context.Context) error {
		return s.app.Shutdown(ctx)
	})

	// 启动 HTTP API 服务器
	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", httpAddr))
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewRouter(frontendFiles, s.app, s.ut),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve(s.httpServer, "api service")
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", httpAddr))
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouterWithLogger(appConfig.Server.RunMode, s.logger),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve(s.privateHttpServer, "private api service")
	}

	return s, nil
}

// serve 启动 srv，收到关闭信号后优雅停止；监听失败时触发整体关闭
func (s *Server) serve(srv *http.Server, name string) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			s.logger.Error(name+" err", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// 停止 HTTP 服务器
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

// abort 启动失败时释放已创建的资源：执行已注册的关闭函数，关闭 App 或数据库，刷新日志
func (s *Server) abort(err error) error {
	s.logger.Error("server init failed", zap.Error(err))
	s.sc.SendCloseSignal(err)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	_ = s.sc.WaitClosed(ctx)
	if s.app != nil {
		_ = s.app.Shutdown(ctx)
	} else if s.db != nil {
		closeDB(s.db)
	}
	_ = s.logger.Sync()
	return err
}

// Shutdown 发送关闭信号并等待所有组件退出
func (s *Server) Shutdown() error {
	s.sc.SendCloseSignal(nil)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	err := s.sc.WaitClosed(ctx)
	_ = s.logger.Sync()
	return err
}

// initScheduler 注册并启动后台任务
func initScheduler(s *Server) error {
	manager := task.NewManager(s.logger, s.sc, s.app)
	if err := manager.RegisterTasks(); err != nil {
		return err
	}
	manager.Start()
	return nil
}

// initLoggerWithConfig 初始化日志器（使用注入的配置）
func initLoggerWithConfig(s *Server, cfg *internalApp.AppConfig) error {
	lg, err := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Log.Production,
	})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	s.logger = lg

	return nil
}

// initStorageWithConfig 初始化存储目录（使用注入的配置）
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	var dirs []string
	if cfg.Log.File != "" {
		dirs = append(dirs, filepath.Dir(cfg.Log.File))
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path != dao.MemoryPath {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
