package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"tphub/internal/service"
	"tphub/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportStatuses 导出 TP 提交状态清单
// GET /api/v1/export/statuses?assignment_id=xxx
func (h *ExportHandler) ExportStatuses(c *gin.Context) {
	assignmentID := c.Query("assignment_id")
	if assignmentID == "" {
		response.BadRequest(c, 10001, "assignment_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportStatusReport(c.Request.Context(), assignmentID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 14201, "TP 不存在")
	case errors.Is(err, service.ErrExportNoStatuses):
		response.BadRequest(c, 14401, "该 TP 尚无核对结果")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
