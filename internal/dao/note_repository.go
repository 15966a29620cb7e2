// Package dao 实现数据访问层
package dao

import (
	"context"
	"strconv"
	"time"

	"github.com/haierkeys/simple-note-service/internal/domain"
	"github.com/haierkeys/simple-note-service/internal/model"
	"github.com/haierkeys/simple-note-service/pkg/timex"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// writeKeyNewNote creates share one queue, existing notes queue by id
// writeKeyNewNote 新建笔记共用一个写队列，已有笔记按 id 排队
const writeKeyNewNote = "note:new"

func noteWriteKey(id int64) string {
	return "note:" + strconv.FormatInt(id, 10)
}

var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: timex.Time{},
			DstType: time.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				return src.(timex.Time).Time().UTC(), nil
			},
		},
		{
			SrcType: time.Time{},
			DstType: timex.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				return timex.Time(src.(time.Time).UTC().Truncate(time.Microsecond)), nil
			},
		},
	},
}

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) (*domain.Note, error) {
	if m == nil {
		return nil, nil
	}
	note := &domain.Note{}
	if err := copier.CopyWithOption(note, m, copyOption); err != nil {
		return nil, err
	}
	return note, nil
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(note *domain.Note) (*model.Note, error) {
	if note == nil {
		return nil, nil
	}
	m := &model.Note{}
	if err := copier.CopyWithOption(m, note, copyOption); err != nil {
		return nil, err
	}
	return m, nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	var result *domain.Note

	err := r.dao.ExecuteWrite(ctx, writeKeyNewNote, func(tx *gorm.DB) error {
		m, err := r.toModel(note)
		if err != nil {
			return err
		}
		m.ID = 0
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		result, err = r.toDomain(m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var m model.Note
	if err := r.dao.DB(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m)
}

// List 按创建时间倒序返回满足条件的笔记
func (r *noteRepository) List(ctx context.Context, filter domain.NoteFilter) ([]*domain.Note, error) {
	var modelList []*model.Note
	err := r.dao.DB(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	list := make([]*domain.Note, 0, len(modelList))
	for _, m := range modelList {
		note, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		if filter.Match(note) {
			list = append(list, note)
		}
	}
	return list, nil
}

// Update 读取、修改并写回，整个过程在同一事务中
func (r *noteRepository) Update(ctx context.Context, id int64, mutate func(note *domain.Note) error) (*domain.Note, error) {
	var result *domain.Note

	err := r.dao.ExecuteWrite(ctx, noteWriteKey(id), func(tx *gorm.DB) error {
		var current model.Note
		if err := tx.Where("id = ?", id).Take(&current).Error; err != nil {
			return err
		}

		note, err := r.toDomain(&current)
		if err != nil {
			return err
		}
		if err := mutate(note); err != nil {
			return err
		}

		m, err := r.toModel(note)
		if err != nil {
			return err
		}
		m.ID = current.ID
		m.CreatedAt = current.CreatedAt

		err = tx.Model(m).
			Select("title", "content", "tags", "updated_at").
			Updates(m).Error
		if err != nil {
			return err
		}

		result, err = r.toDomain(m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete 物理删除笔记，不存在时返回 gorm.ErrRecordNotFound
func (r *noteRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.ExecuteWrite(ctx, noteWriteKey(id), func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Note{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListTags 返回全部笔记的原始标签串
func (r *noteRepository) ListTags(ctx context.Context) ([]domain.Tags, error) {
	var raw []string
	err := r.dao.DB(ctx).
		Model(&model.Note{}).
		Where("tags <> ?", "").
		Pluck("tags", &raw).Error
	if err != nil {
		return nil, err
	}

	tags := make([]domain.Tags, 0, len(raw))
	for _, t := range raw {
		tags = append(tags, domain.Tags(t))
	}
	return tags, nil
}

// Ping 检查存储是否可用
func (r *noteRepository) Ping(ctx context.Context) error {
	return r.dao.Ping(ctx)
}
