package model

import "github.com/haierkeys/simple-note-service/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Title     string     `gorm:"column:title;type:varchar(200);not null" json:"title" form:"title"`
	Content   string     `gorm:"column:content;type:text;not null" json:"content" form:"content"`
	Tags      string     `gorm:"column:tags;type:varchar(500);not null;default:''" json:"tags" form:"tags"`
	CreatedAt timex.Time `gorm:"column:created_at;precision:6;not null;index:idx_note_created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;precision:6;not null;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}
