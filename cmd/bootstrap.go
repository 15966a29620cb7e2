package cmd

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapLogger 启动阶段日志器
// 用于在主日志器初始化之前记录启动过程中的日志
var bootstrapLogger *zap.Logger

func init() {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// DEBUG 环境变量非空时输出 debug 日志
	level := zapcore.InfoLevel
	if os.Getenv("DEBUG") != "" {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level)
	bootstrapLogger = zap.New(core, zap.AddCaller())
}
