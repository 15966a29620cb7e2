// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/haierkeys/simple-note-service/internal/domain"
	"github.com/haierkeys/simple-note-service/internal/dto"
	"github.com/haierkeys/simple-note-service/pkg/code"
	"github.com/haierkeys/simple-note-service/pkg/logger"
	"github.com/haierkeys/simple-note-service/pkg/tracer"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// NoteService 定义笔记业务服务接口
// 返回的错误均为 *code.Code
type NoteService interface {
	// Create 创建笔记
	Create(ctx context.Context, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)

	// Get 获取单条笔记
	Get(ctx context.Context, id int64) (*dto.NoteDTO, error)

	// List 获取笔记列表，按创建时间倒序
	List(ctx context.Context, params *dto.NoteListRequest) ([]*dto.NoteDTO, error)

	// Update 修改笔记，仅修改提供的字段
	Update(ctx context.Context, id int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error)

	// Delete 删除笔记
	Delete(ctx context.Context, id int64) error

	// DistinctTags 获取所有不重复的标签
	DistinctTags(ctx context.Context) ([]string, error)

	// Health 检查存储是否可用
	Health(ctx context.Context) error
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo domain.NoteRepository
	sf       *singleflight.Group
	logger   *zap.Logger
	config   *ServiceConfig
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, lg *zap.Logger, config *ServiceConfig) NoteService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &noteService{
		noteRepo: noteRepo,
		sf:       &singleflight.Group{},
		logger:   lg,
		config:   config,
	}
}

// Create 创建笔记
func (s *noteService) Create(ctx context.Context, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	if params.IsEmpty() {
		return nil, code.ErrorNoDataProvided
	}

	title := strings.TrimSpace(params.Title.Value)
	content := strings.TrimSpace(params.Content.Value)
	tags := strings.TrimSpace(params.Tags.Value)

	var details []string
	if title == "" {
		details = append(details, "Title is required")
	} else if msg, ok := checkLength("Title", title, domain.TitleMaxLength); !ok {
		details = append(details, msg)
	}
	if content == "" {
		details = append(details, "Content is required")
	}
	if msg, ok := checkLength("Tags", tags, domain.TagsMaxLength); !ok {
		details = append(details, msg)
	}
	if len(details) > 0 {
		return nil, code.ErrorNoteValidation.WithDetails(details...)
	}

	now := s.config.now()
	note, err := s.noteRepo.Create(ctx, &domain.Note{
		Title:     title,
		Content:   content,
		Tags:      domain.Tags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, s.storageError(ctx, "NoteService.Create", 0, err)
	}

	s.logger.Info("note created",
		zap.String(logger.FieldTraceID, tracer.TraceID(ctx)),
		zap.Int64(logger.FieldNoteID, note.ID),
	)
	return dto.NoteFromDomain(note), nil
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError(ctx, "NoteService.Get", id, err)
	}
	return dto.NoteFromDomain(note), nil
}

// List 获取笔记列表，search 与 tag 同时提供时取交集
func (s *noteService) List(ctx context.Context, params *dto.NoteListRequest) ([]*dto.NoteDTO, error) {
	var filter domain.NoteFilter
	if params != nil {
		filter = domain.NoteFilter{Search: params.Search, Tag: params.Tag}
	}

	notes, err := s.noteRepo.List(ctx, filter)
	if err != nil {
		return nil, s.storageError(ctx, "NoteService.List", 0, err)
	}
	return dto.NotesFromDomain(notes), nil
}

// Update 修改笔记
// 先确认笔记存在，再校验字段
func (s *noteService) Update(ctx context.Context, id int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.Update(ctx, id, func(n *domain.Note) error {
		if params.IsEmpty() {
			return code.ErrorNoDataProvided
		}
		patch, details := buildPatch(params)
		if len(details) > 0 {
			return code.ErrorNoteValidation.WithDetails(details...)
		}
		patch.Apply(n)
		n.Touch(s.config.now())
		return nil
	})
	if err != nil {
		return nil, s.storageError(ctx, "NoteService.Update", id, err)
	}

	s.logger.Info("note updated",
		zap.String(logger.FieldTraceID, tracer.TraceID(ctx)),
		zap.Int64(logger.FieldNoteID, id),
	)
	return dto.NoteFromDomain(note), nil
}

// Delete 删除笔记
func (s *noteService) Delete(ctx context.Context, id int64) error {
	if err := s.noteRepo.Delete(ctx, id); err != nil {
		return s.storageError(ctx, "NoteService.Delete", id, err)
	}

	s.logger.Info("note deleted",
		zap.String(logger.FieldTraceID, tracer.TraceID(ctx)),
		zap.Int64(logger.FieldNoteID, id),
	)
	return nil
}

// DistinctTags 获取所有不重复的标签（区分大小写，按字典序）
// 并发的相同请求合并为一次扫描，结果不缓存
// 扫描不继承任何调用方的取消，每个调用方只等待自己的 ctx
func (s *noteService) DistinctTags(ctx context.Context) ([]string, error) {
	ch := s.sf.DoChan("distinct-tags", func() (interface{}, error) {
		scanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.scanTimeout())
		defer cancel()

		raw, err := s.noteRepo.ListTags(scanCtx)
		if err != nil {
			return nil, err
		}
		return domain.DistinctTags(raw), nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, s.storageError(ctx, "NoteService.DistinctTags", 0, ctx.Err())
	}
	if res.Err != nil {
		return nil, s.storageError(ctx, "NoteService.DistinctTags", 0, res.Err)
	}

	shared := res.Val.([]string)
	tags := make([]string, len(shared))
	copy(tags, shared)
	return tags, nil
}

// Health 检查存储是否可用
func (s *noteService) Health(ctx context.Context) error {
	if err := s.noteRepo.Ping(ctx); err != nil {
		s.logger.Warn("storage ping failed",
			zap.String(logger.FieldTraceID, tracer.TraceID(ctx)),
			zap.String(logger.FieldMethod, "NoteService.Health"),
			zap.Error(err),
		)
		return code.ErrorServiceUnhealthy
	}
	return nil
}

// storageError maps repository errors onto codes; unknown failures are logged and hidden
// storageError 将仓储错误映射为错误码，未知错误仅记录日志不返回细节
func (s *noteService) storageError(ctx context.Context, method string, id int64, err error) error {
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return codeErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return code.ErrorNoteNotFound
	}

	s.logger.Error("note storage failed",
		zap.String(logger.FieldTraceID, tracer.TraceID(ctx)),
		zap.String(logger.FieldMethod, method),
		zap.Int64(logger.FieldNoteID, id),
		zap.Error(err),
	)
	return code.ErrorDBQuery
}

// buildPatch trims supplied fields and collects violations
// buildPatch 去除已提供字段的首尾空白并收集校验错误
func buildPatch(params *dto.NoteUpdateRequest) (domain.NotePatch, []string) {
	var (
		patch   domain.NotePatch
		details []string
	)

	if v := params.Title.Ptr(); v != nil {
		title := strings.TrimSpace(*v)
		if title == "" {
			details = append(details, "Title cannot be empty")
		} else if msg, ok := checkLength("Title", title, domain.TitleMaxLength); !ok {
			details = append(details, msg)
		}
		patch.Title = &title
	}
	if v := params.Content.Ptr(); v != nil {
		content := strings.TrimSpace(*v)
		if content == "" {
			details = append(details, "Content cannot be empty")
		}
		patch.Content = &content
	}
	if v := params.Tags.Ptr(); v != nil {
		tags := strings.TrimSpace(*v)
		if msg, ok := checkLength("Tags", tags, domain.TagsMaxLength); !ok {
			details = append(details, msg)
		}
		patch.Tags = &tags
	}

	return patch, details
}

func checkLength(field, value string, max int) (string, bool) {
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("%s must be at most %d characters", field, max), false
	}
	return "", true
}
