// Package upgrade 管理数据库结构与数据的版本升级
package upgrade

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// versionFileName 记录上一次运行版本的文件名，与配置文件放在同一目录
const versionFileName = "lastVersion"

// VersionFileFor 返回与配置文件同目录的版本记录文件路径
func VersionFileFor(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), versionFileName)
}

// baseVersion 没有版本记录时的参考版本
const baseVersion = "v0.0.0"

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(db *gorm.DB, ctx context.Context) error
}

// MigrationManager 升级管理器
type MigrationManager struct {
	db             *gorm.DB
	logger         *zap.Logger
	runningVersion string
	versionFile    string
	migrations     []Migration
}

// NewMigrationManager 创建升级管理器
// versionFile 为空时不读写参考版本文件，所有未记录的升级都会执行
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, runningVersion, versionFile string) *MigrationManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationManager{
		db:             db,
		logger:         logger,
		runningVersion: normalize(runningVersion),
		versionFile:    versionFile,
		migrations: []Migration{
			// 在这里注册所有的升级脚本
			&TagsNormalizeMigrate{},
		},
	}
}

// Run 执行升级
func (m *MigrationManager) Run(ctx context.Context) error {
	m.logger.Info("Migration started")

	// 确保 schema_version 表存在
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	lastVersion := m.getReferenceVersion()
	m.logger.Info("LastVersion", zap.String("lastVersion", lastVersion))

	// 当前版本没有比上一次运行的版本更新，不需要执行升级检查
	if semver.IsValid(m.runningVersion) && semver.Compare(m.runningVersion, lastVersion) <= 0 {
		m.logger.Info("skipping upgrade",
			zap.String("runningVersion", m.runningVersion),
			zap.String("lastVersion", lastVersion))
		return nil
	}

	appliedVersions, err := m.getAppliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied versions: %w", err)
	}

	executed := 0
	for _, migration := range m.migrations {
		scriptVersion := normalize(migration.Version())

		if semver.Compare(scriptVersion, lastVersion) <= 0 {
			m.logger.Debug("skip migration <= lastVersion",
				zap.String("scriptVersion", scriptVersion),
				zap.String("lastVersion", lastVersion))
			continue
		}

		if appliedVersions[migration.Version()] {
			continue
		}

		m.logger.Info("applying migration",
			zap.String("scriptVersion", migration.Version()),
			zap.String("desc", migration.Description()))

		// 在事务中执行升级
		if err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx, ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			record := &SchemaVersion{
				Version:     migration.Version(),
				Description: migration.Description(),
				AppliedAt:   time.Now().UTC(),
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to record version: %w", err)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version(), err)
		}

		m.logger.Info("migration applied successfully", zap.String("scriptVersion", migration.Version()))
		executed++
	}

	if executed == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", executed))
	}

	// 将当前版本写入参考版本文件，作为下一次运行的基准
	if err := m.saveReferenceVersion(); err != nil {
		// 记录错误但不阻断启动
		m.logger.Error("save lastVersion failed", zap.Error(err))
	}

	return nil
}

// getAppliedVersions 获取已应用的数据库版本
func (m *MigrationManager) getAppliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []SchemaVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v.Version] = true
	}
	return applied, nil
}

// getReferenceVersion 获取参考版本号
// 文件不存在、为空或格式不合法时返回 v0.0.0
func (m *MigrationManager) getReferenceVersion() string {
	if m.versionFile == "" {
		return baseVersion
	}

	content, err := os.ReadFile(m.versionFile)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("read lastVersion failed", zap.String("file", m.versionFile), zap.Error(err))
		}
		return baseVersion
	}

	ver := normalize(strings.TrimSpace(string(content)))
	if !semver.IsValid(ver) {
		m.logger.Warn("lastVersion is not a valid semver, ignoring", zap.String("lastVersion", ver))
		return baseVersion
	}
	return ver
}

// saveReferenceVersion 保存当前版本号到参考版本文件
func (m *MigrationManager) saveReferenceVersion() error {
	if m.versionFile == "" || !semver.IsValid(m.runningVersion) {
		return nil
	}
	if err := os.WriteFile(m.versionFile, []byte(m.runningVersion), 0644); err != nil {
		return err
	}
	m.logger.Info("save lastVersion success", zap.String("ver", m.runningVersion))
	return nil
}

// normalize semver 库要求版本号带 "v" 前缀
func normalize(v string) string {
	if v != "" && !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// Execute 执行升级(便捷方法)
func Execute(db *gorm.DB, lg *zap.Logger, runningVersion, versionFile string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, lg, runningVersion, versionFile).Run(context.Background())
}
