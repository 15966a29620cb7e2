package logger

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	// Level debug/info/warn/error
	Level string
	// File optional log file, appended to
	// File 日志文件路径，为空时仅输出到控制台
	File string
	// Production JSON encoder on console when true
	// Production 为 true 时控制台输出 JSON
	Production bool
}

// NewLogger builds a zap logger writing to stdout and, when configured, to a file
// NewLogger 创建 zap 日志器，输出到控制台，配置了文件时同时写入文件
func NewLogger(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var consoleEnc zapcore.Encoder
	if cfg.Production {
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	} else {
		devCfg := encCfg
		devCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEnc = zapcore.NewConsoleEncoder(devCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stdout), level),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, errors.Wrap(err, "create log dir")
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
