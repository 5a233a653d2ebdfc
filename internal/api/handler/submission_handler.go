package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tphub/internal/service"
	pkgerrors "tphub/pkg/errors"
	"tphub/pkg/response"
)

// SubmissionHandler 提交与流水线模块 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
	reconcileSvc  service.ReconcileService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService, reconcileSvc service.ReconcileService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionSvc: submissionSvc,
		reconcileSvc:  reconcileSvc,
	}
}

// UploadSubmission 上传/替换 TP 的外层提交包（multipart 字段 file）
// POST /api/v1/assignments/:id/submission
func (h *SubmissionHandler) UploadSubmission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "TP ID不能为空")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer src.Close()

	submission, err := h.submissionSvc.Upload(c.Request.Context(), id, fileHeader.Filename, src, callerID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.Created(c, submission)
}

// GetSubmission 获取 TP 的提交记录
// GET /api/v1/assignments/:id/submission
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "TP ID不能为空")
		return
	}

	submission, err := h.submissionSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, submission)
}

// Restructure 触发重组流水线
// POST /api/v1/assignments/:id/restructure
func (h *SubmissionHandler) Restructure(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "TP ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.Restructure(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// Reconcile 触发提交状态核对流水线
// POST /api/v1/assignments/:id/reconcile
func (h *SubmissionHandler) Reconcile(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "TP ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	statuses, err := h.reconcileSvc.Reconcile(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": statuses})
}

// ListStatuses 获取 TP 的提交状态清单
// GET /api/v1/assignments/:id/statuses
func (h *SubmissionHandler) ListStatuses(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "TP ID不能为空")
		return
	}

	statuses, err := h.reconcileSvc.ListStatuses(c.Request.Context(), id)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": statuses})
}

// handleSubmissionError 统一处理提交/流水线模块业务错误
func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 14201, "TP 不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 14001, "课程不存在")
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 14301, "该 TP 尚无提交")
	case errors.Is(err, service.ErrUploadNotZip):
		response.BadRequest(c, 14302, "提交包必须为 .zip 格式")
	case errors.Is(err, service.ErrOuterArchiveMissing):
		response.NotFound(c, 14303, "提交压缩包文件缺失")
	case errors.Is(err, service.ErrNotRestructured):
		response.BadRequest(c, 14304, "该 TP 尚未完成重组，请先运行重组")
	case errors.Is(err, pkgerrors.ErrPipelineBusy):
		response.Conflict(c, 14305, "该 TP 的流水线正在运行，请稍后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/submission_handler.go
