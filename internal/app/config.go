// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/simple-note-service/internal/dao"
	"github.com/haierkeys/simple-note-service/pkg/util"
	"github.com/haierkeys/simple-note-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	App      AppSettings    `yaml:"app"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到控制台
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug / release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics / pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/notes.db"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机，可带端口
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集（mysql）
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间（mysql）
	ParseTime bool `yaml:"parse-time" default:"true"`
	// BusyTimeout SQLite 等待写锁的毫秒数
	BusyTimeout int `yaml:"busy-timeout" default:"5000"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时）
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大存活时间
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 请求上下文超时（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`

	// RateLimitPerSecond 每个接口每秒允许的请求数，0 表示不限流
	RateLimitPerSecond int `yaml:"rate-limit-per-second" default:"100"`

	// MaintenanceCron 数据库维护任务的 cron 表达式，为空时不启用
	MaintenanceCron string `yaml:"maintenance-cron" default:"@every 1h"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
	// JaegerAgent Jaeger agent 地址（host:port），为空时不上报
	JaegerAgent string `yaml:"jaeger-agent"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath

	return c, realpath, nil
}

// ParseConfig 解析 YAML 配置并填充默认值
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}

	// YAML 中显式给出的零值（如 rate-limit-per-second: 0）会覆盖默认值
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate 检查配置取值
func (c *AppConfig) Validate() error {
	switch c.Database.Type {
	case "sqlite", "mysql", "postgres":
	default:
		return errors.Errorf("unsupported database type %q", c.Database.Type)
	}
	switch c.Server.RunMode {
	case "debug", "release", "test":
	default:
		return errors.Errorf("unsupported run-mode %q", c.Server.RunMode)
	}
	if c.App.DefaultContextTimeout <= 0 {
		return errors.New("app.default-context-timeout must be positive")
	}
	return nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	cfg.WriteTimeout = util.ParseDurationOr(c.App.WriteQueueTimeout, cfg.WriteTimeout)
	cfg.IdleTimeout = util.ParseDurationOr(c.App.WriteQueueIdleTime, cfg.IdleTimeout)

	return cfg
}

// GetContextTimeout 请求上下文超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

// GetDatabaseConfig 转换为 dao.DatabaseConfig
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		BusyTimeout:     c.Database.BusyTimeout,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}
