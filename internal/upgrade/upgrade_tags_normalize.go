package upgrade

import (
	"context"

	"github.com/haierkeys/simple-note-service/internal/model"

	"gorm.io/gorm"
)

// TagsNormalizeMigrate 将 NULL 标签改为空字符串并去除首尾空白
// Rows written by older builds may carry NULL or padded tag strings
type TagsNormalizeMigrate struct{}

// Version 返回版本号
func (m *TagsNormalizeMigrate) Version() string {
	return "1.0.1"
}

// Description 返回描述
func (m *TagsNormalizeMigrate) Description() string {
	return "Normalize NULL tags to empty string and trim surrounding whitespace"
}

// Up 执行升级
func (m *TagsNormalizeMigrate) Up(db *gorm.DB, ctx context.Context) error {
	tx := db.WithContext(ctx)

	if err := tx.Model(&model.Note{}).
		Where("tags IS NULL").
		UpdateColumn("tags", "").Error; err != nil {
		return err
	}

	return tx.Model(&model.Note{}).
		Where("tags <> TRIM(tags)").
		UpdateColumn("tags", gorm.Expr("TRIM(tags)")).Error
}
