package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tphub/internal/dto"
	"tphub/internal/service"
	"tphub/pkg/response"
)

// AssignmentHandler TP 模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// ListAssignments 获取课程下的 TP 列表
// GET /api/v1/courses/:id/assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	assignments, err := h.assignmentSvc.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

// CreateAssignment 在课程下创建 TP
// POST /api/v1/courses/:id/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.Create(c.Request.Context(), courseID, &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, assignment)
}

// GetAssignment 获取 TP 详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "TP ID不能为空")
		return
	}

	assignment, err := h.assignmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// UpdateAssignment 更新 TP
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "TP ID不能为空")
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// DeleteAssignment 删除 TP
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "TP ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAssignmentError 统一处理 TP 模块业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 14201, "TP 不存在")
	case errors.Is(err, service.ErrAssignmentSeqTaken):
		response.Conflict(c, 14202, "该课程下已存在相同序号的 TP")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 14001, "课程不存在")
	default:
		response.InternalError(c)
	}
}
