package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tphub/internal/model"
	"tphub/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoStatuses   = errors.New("该 TP 尚无核对结果，请先运行核对")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出某 TP 的提交状态清单为 Excel (.xlsx)，供教师归档或上报
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportStatusReport 导出 TP 提交状态清单为 Excel
	ExportStatusReport(ctx context.Context, assignmentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── ExportStatusReport ──────────────────────
//
// 输出格式：
//   - Sheet "提交状态"
//   - 表头：学生姓名 | 邮箱 | 提交状态
//   - 行按学生姓名排序，状态以中文呈现

func (s *exportService) ExportStatusReport(ctx context.Context, assignmentID string) (*bytes.Buffer, string, error) {
	// 1. 查询 TP 与所属课程
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrAssignmentNotFound
		}
		s.logger.Error("查询 TP 失败", zap.String("id", assignmentID), zap.Error(err))
		return nil, "", err
	}

	// 2. 查询核对结果
	statuses, err := s.repo.StudentStatus.ListByAssignment(ctx, assignmentID)
	if err != nil {
		s.logger.Error("查询提交状态失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, "", err
	}
	if len(statuses) == 0 {
		return nil, "", ErrExportNoStatuses
	}

	// 3. 构建行（按学生姓名排序）
	type row struct {
		name  string
		email string
		state string
	}
	rows := make([]row, 0, len(statuses))
	for i := range statuses {
		st := &statuses[i]
		r := row{state: stateLabel(st.SubmissionState)}
		if st.Student != nil {
			r.name = st.Student.FullName
			r.email = st.Student.Email
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	courseCode := ""
	if assignment.Course != nil {
		courseCode = assignment.Course.Code
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "提交状态"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s TP%d — 提交状态", courseCode, assignment.Seq))
	f.MergeCell(sheetName, "A1", "C1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, cell("A", 2), "学生姓名")
	f.SetCellValue(sheetName, cell("B", 2), "邮箱")
	f.SetCellValue(sheetName, cell("C", 2), "提交状态")

	// 数据行
	for i, r := range rows {
		rowNum := 3 + i
		f.SetCellValue(sheetName, cell("A", rowNum), r.name)
		f.SetCellValue(sheetName, cell("B", rowNum), r.email)
		f.SetCellValue(sheetName, cell("C", rowNum), r.state)
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s_TP%d_提交状态.xlsx", courseCode, assignment.Seq)
	return buf, filename, nil
}

// ── 辅助函数 ──

func stateLabel(state string) string {
	switch state {
	case model.SubmissionStateDone:
		return "已提交"
	case model.SubmissionStateMissing:
		return "未提交"
	default:
		return "未核对"
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
