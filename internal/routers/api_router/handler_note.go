package api_router

import (
	"errors"
	"io"

	"github.com/haierkeys/simple-note-service/internal/app"
	"github.com/haierkeys/simple-note-service/internal/dto"
	pkgapp "github.com/haierkeys/simple-note-service/pkg/app"
	"github.com/haierkeys/simple-note-service/pkg/code"
	apperrors "github.com/haierkeys/simple-note-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandler(a),
	}
}

// List 获取笔记列表
// @Summary 获取笔记列表
// @Description 按创建时间倒序返回笔记，可按关键字与标签过滤（不区分大小写）
// @Tags 笔记
// @Produce json
// @Param params query dto.NoteListRequest false "查询参数"
// @Success 200 {object} pkgapp.ResList{data=[]dto.NoteDTO} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.List.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()
	notes, err := h.App.NoteService.List(ctx, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, notes, len(notes))
}

// Get 获取单条笔记
// @Summary 获取笔记详情
// @Tags 笔记
// @Produce json
// @Param id path int true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Failure 404 {object} apperrors.AppError "笔记不存在"
// @Router /api/notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Get(ctx, id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Create 创建笔记
// @Summary 创建笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "笔记内容"
// @Success 201 {object} pkgapp.Res{data=dto.NoteDTO} "创建成功"
// @Failure 400 {object} apperrors.AppError "参数错误"
// @Router /api/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	params := &dto.NoteCreateRequest{}
	if !h.bindBody(c, params) {
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Create(ctx, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(note))
}

// Update 更新笔记，只修改请求体中提供的字段
// @Summary 更新笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param id path int true "笔记 ID"
// @Param params body dto.NoteUpdateRequest true "需要修改的字段"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "更新成功"
// @Failure 400 {object} apperrors.AppError "参数错误"
// @Failure 404 {object} apperrors.AppError "笔记不存在"
// @Router /api/notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	params := &dto.NoteUpdateRequest{}
	if !h.bindBody(c, params) {
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Update(ctx, id, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessUpdate.WithData(note))
}

// Delete 删除笔记
// @Summary 删除笔记
// @Tags 笔记
// @Produce json
// @Param id path int true "笔记 ID"
// @Success 200 {object} pkgapp.Res "删除成功"
// @Failure 404 {object} apperrors.AppError "笔记不存在"
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.App.NoteService.Delete(ctx, id); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}

// Tags 获取所有不重复的标签
// @Summary 标签列表
// @Description 大小写敏感去重并按字典序排序
// @Tags 笔记
// @Produce json
// @Success 200 {object} pkgapp.ResList{data=[]string} "成功"
// @Router /api/tags [get]
func (h *NoteHandler) Tags(c *gin.Context) {
	ctx := c.Request.Context()
	tags, err := h.App.NoteService.DistinctTags(ctx)
	if err != nil {
		h.logError(ctx, "NoteHandler.Tags", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	pkgapp.NewResponse(c).ToResponseList(code.Success, tags, len(tags))
}

// bindID 解析路径中的笔记 ID，非正整数视为笔记不存在
func (h *NoteHandler) bindID(c *gin.Context) (int64, bool) {
	params := &dto.NoteIDRequest{}
	if valid, errs := pkgapp.BindUriAndValid(c, params); !valid {
		h.App.Logger().Debug("NoteHandler.bindID err", zap.Error(errs))
		apperrors.ErrorResponse(c, code.ErrorNoteNotFound)
		return 0, false
	}
	return params.ID, true
}

// bindBody 解析 JSON 请求体
// 空请求体视为未提供数据，其他解析错误返回参数错误
func (h *NoteHandler) bindBody(c *gin.Context, params interface{}) bool {
	err := c.ShouldBindJSON(params)
	if err == nil {
		return true
	}

	if errors.Is(err, io.EOF) {
		apperrors.ErrorResponse(c, code.ErrorNoDataProvided)
		return false
	}

	h.App.Logger().Debug("NoteHandler.bindBody err", zap.Error(err))
	apperrors.ErrorResponse(c, code.ErrorInvalidParams.WithDetails(err.Error()))
	return false
}
