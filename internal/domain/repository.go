// Package domain 定义领域模型和接口
package domain

import "context"

// NoteRepository 笔记仓储接口
// 未找到记录时返回 gorm.ErrRecordNotFound
type NoteRepository interface {
	// Create 创建笔记，回填 ID
	Create(ctx context.Context, note *Note) (*Note, error)

	// GetByID 根据ID获取笔记
	GetByID(ctx context.Context, id int64) (*Note, error)

	// List 按 created_at DESC, id DESC 返回满足过滤条件的笔记
	List(ctx context.Context, filter NoteFilter) ([]*Note, error)

	// Update 在同一事务中读取笔记、执行 mutate 并写回
	// mutate 返回错误时不写入
	Update(ctx context.Context, id int64, mutate func(note *Note) error) (*Note, error)

	// Delete 物理删除笔记
	Delete(ctx context.Context, id int64) error

	// ListTags 返回全部笔记的原始标签串
	ListTags(ctx context.Context) ([]Tags, error)

	// Ping 检查存储是否可用
	Ping(ctx context.Context) error
}
