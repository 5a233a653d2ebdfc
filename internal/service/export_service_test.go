package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"tphub/internal/model"
)

// ── ExportStatusReport 测试 ──

func TestExportService_ExportStatusReport_AssignmentNotFound(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	_, _, err := svc.ExportStatusReport(context.Background(), "nonexistent")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际: %v", err)
	}
}

func TestExportService_ExportStatusReport_NoStatuses(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")
	svc := NewExportService(repo, zap.NewNop())

	_, _, err := svc.ExportStatusReport(context.Background(), "tp-001")
	if !errors.Is(err, ErrExportNoStatuses) {
		t.Errorf("期望 ErrExportNoStatuses，实际: %v", err)
	}
}

func TestExportService_ExportStatusReport_Success(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")

	mocks.students.students["stu-a"] = &model.Student{StudentID: "stu-a", FullName: "Scout Mark", Email: "scout@example.com"}
	mocks.students.students["stu-b"] = &model.Student{StudentID: "stu-b", FullName: "Bailiff Irving"}
	mocks.statuses.statuses["stu-a:tp-001"] = &model.StudentStatus{
		StatusID: "status-001", StudentID: "stu-a", AssignmentID: "tp-001",
		SubmissionState: model.SubmissionStateDone,
	}
	mocks.statuses.statuses["stu-b:tp-001"] = &model.StudentStatus{
		StatusID: "status-002", StudentID: "stu-b", AssignmentID: "tp-001",
		SubmissionState: model.SubmissionStateMissing,
	}

	svc := NewExportService(repo, zap.NewNop())

	buf, filename, err := svc.ExportStatusReport(context.Background(), "tp-001")
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if filename != "PROG1_TP1_提交状态.xlsx" {
		t.Errorf("期望文件名 PROG1_TP1_提交状态.xlsx，实际=%s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("解析导出文件失败: %v", err)
	}
	defer f.Close()

	// 行按姓名排序：Bailiff Irving 在前
	name, _ := f.GetCellValue("提交状态", "A3")
	if name != "Bailiff Irving" {
		t.Errorf("A3 期望 Bailiff Irving，实际=%s", name)
	}
	state, _ := f.GetCellValue("提交状态", "C3")
	if state != "未提交" {
		t.Errorf("C3 期望 未提交，实际=%s", state)
	}
	name2, _ := f.GetCellValue("提交状态", "A4")
	if name2 != "Scout Mark" {
		t.Errorf("A4 期望 Scout Mark，实际=%s", name2)
	}
	state2, _ := f.GetCellValue("提交状态", "C4")
	if state2 != "已提交" {
		t.Errorf("C4 期望 已提交，实际=%s", state2)
	}
}
