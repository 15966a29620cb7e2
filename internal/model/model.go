package model

import (
	"gorm.io/gorm"
)

// AutoMigrate migrates the model named by key, an empty key migrates all
// AutoMigrate 迁移 key 对应的模型，key 为空时迁移全部
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "", "Note":
		return db.AutoMigrate(&Note{})
	}
	return nil
}
