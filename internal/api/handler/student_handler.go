package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tphub/internal/dto"
	"tphub/internal/service"
	"tphub/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 获取学生列表
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// GetStudent 获取学生详情
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	student, err := h.studentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// CreateStudent 创建学生
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent 更新学生
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent 删除学生
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleStudentError 统一处理学生模块业务错误
func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 14101, "学生不存在")
	default:
		response.InternalError(c)
	}
}
