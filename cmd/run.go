package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haierkeys/simple-note-service/pkg/fileurl"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // 项目根目录
	port    string // 启动端口
	runMode string // 启动模式
	config  string // 指定要使用的配置文件路径
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
					return
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) <= 0 {
				runEnv.config = resolveConfigPath()
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			w := watcher.New()
			// 每个监听周期至多接收 1 个事件
			w.SetMaxEvents(1)
			// 只通知写入事件
			w.FilterOps(watcher.Write)
			if err := w.Add(runEnv.config); err != nil {
				s.logger.Error("config watcher file error", zap.Error(err))
			}
			go func() {
				if err := w.Start(time.Second * 5); err != nil {
					bootstrapLogger.Error("config watcher start error", zap.Error(err))
				}
			}()
			defer w.Close()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			for {
				// 重载失败时 s 为 nil，等待下一次配置修改
				var failed <-chan struct{}
				if s != nil {
					failed = s.sc.CloseSignal()
				}

				select {
				case <-quit:
					bootstrapLogger.Info("Received shutdown signal, initiating graceful shutdown...")
					if s != nil {
						shutdown(s)
					}
					return

				case <-failed:
					s.logger.Error("service stopped unexpectedly", zap.Error(s.sc.Err()))
					shutdown(s)
					return

				case event := <-w.Event:
					bootstrapLogger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
					if s != nil {
						shutdown(s)
					}

					// 重新初始化 server
					s, err = NewServer(runEnv)
					if err != nil {
						bootstrapLogger.Error("service restart err", zap.Error(err))
						s = nil
					}

				case err := <-w.Error:
					bootstrapLogger.Error("config watcher error", zap.Error(err))
				}
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}

// resolveConfigPath 查找配置文件，都不存在时写入内嵌的默认配置
func resolveConfigPath() string {
	for _, p := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileurl.IsExist(p) {
			return p
		}
	}

	path := "config/config.yaml"
	bootstrapLogger.Warn("config file not found, creating default config")
	created, err := fileurl.WriteIfMissing(path, []byte(configDefault), 0644)
	if err != nil {
		bootstrapLogger.Error("config file auto create error", zap.Error(err))
	} else if created {
		bootstrapLogger.Info("config file auto create successfully", zap.String("path", path))
	}
	return path
}

// shutdown 优雅关闭 server 并记录结果
func shutdown(s *Server) {
	if err := s.Shutdown(); err != nil {
		s.logger.Error("Shutdown completed with error", zap.Error(err))
	} else {
		s.logger.Info("Service has been shut down gracefully.")
	}
}
