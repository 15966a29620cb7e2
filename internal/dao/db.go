package dao

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/haierkeys/simple-note-service/pkg/fileurl"
	"github.com/haierkeys/simple-note-service/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// MemoryPath opens a private in-memory SQLite database
// MemoryPath 使用内存 SQLite 数据库
const MemoryPath = ":memory:"

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	// Type sqlite / mysql / postgres
	Type        string
	Path        string
	UserName    string
	Password    string
	Host        string
	Name        string
	TablePrefix string
	AutoMigrate bool
	Charset     string
	ParseTime   bool
	// BusyTimeout SQLite 等待写锁的毫秒数
	BusyTimeout     int
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// NewDBEngineWithConfig opens the database described by c and applies pool settings
// NewDBEngineWithConfig 按配置打开数据库并设置连接池
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(lg, c.RunMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Type == "sqlite" && c.Path == MemoryPath {
		// every connection to :memory: is a separate database
		// 每个 :memory: 连接都是独立的数据库
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		if c.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		}
		if c.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		}
		if d, err := parseDuration(c.ConnMaxLifetime); err != nil {
			return nil, errors.Wrap(err, "conn-max-lifetime")
		} else if d > 0 {
			sqlDB.SetConnMaxLifetime(d)
		}
		if d, err := parseDuration(c.ConnMaxIdleTime); err != nil {
			return nil, errors.Wrap(err, "conn-max-idle-time")
		} else if d > 0 {
			sqlDB.SetConnMaxIdleTime(d)
		}
	}

	_ = db.Use(&gormTracing.OpentracingPlugin{})

	return db, nil
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=UTC",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			charset,
			c.ParseTime,
		)), nil
	case "postgres":
		host, port := c.Host, "5432"
		if i := strings.LastIndex(host, ":"); i > 0 {
			host, port = c.Host[:i], c.Host[i+1:]
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			host,
			port,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite", "":
		if c.Path == MemoryPath {
			return sqlite.Open(MemoryPath), nil
		}
		if !fileurl.IsExist(c.Path) {
			if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create sqlite dir")
			}
		}
		busy := c.BusyTimeout
		if busy <= 0 {
			busy = 5000
		}
		return sqlite.Open(fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", c.Path, busy)), nil
	}
	return nil, errors.Errorf("unsupported database type %q", c.Type)
}

// newGormLogger routes gorm logs into zap, SQL is only traced in debug mode
// newGormLogger 将 gorm 日志输出到 zap，仅 debug 模式输出 SQL
func newGormLogger(lg *zap.Logger, runMode string) logger.Interface {
	if lg == nil {
		return logger.Default.LogMode(logger.Silent)
	}
	level := logger.Warn
	if runMode == "debug" {
		level = logger.Info
	}
	return logger.New(zap.NewStdLog(lg.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// parseDuration accepts util.ParseDuration formats, an empty value means unset
func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return util.ParseDuration(s)
}
