package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"tphub/internal/dto"
	"tphub/internal/model"
)

// ── Create 测试 ──

func TestAssignmentService_Create_Success(t *testing.T) {
	repo, mocks := newMockRepository()
	mocks.courses.courses["course-PROG1"] = &model.Course{CourseID: "course-PROG1", Code: "PROG1"}
	svc := NewAssignmentService(repo, zap.NewNop())

	resp, err := svc.Create(context.Background(), "course-PROG1", &dto.CreateAssignmentRequest{
		Seq:   1,
		Title: "变量与控制结构",
	}, "user-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Seq != 1 {
		t.Errorf("期望 Seq=1，实际=%d", resp.Seq)
	}
	if resp.CourseID != "course-PROG1" {
		t.Errorf("期望 CourseID=course-PROG1，实际=%s", resp.CourseID)
	}
}

func TestAssignmentService_Create_SeqTaken(t *testing.T) {
	repo, mocks := newMockRepository()
	mocks.courses.courses["course-PROG1"] = &model.Course{CourseID: "course-PROG1", Code: "PROG1"}
	mocks.assignments.assignments["tp-001"] = &model.Assignment{
		AssignmentID: "tp-001", CourseID: "course-PROG1", Seq: 1,
	}
	svc := NewAssignmentService(repo, zap.NewNop())

	_, err := svc.Create(context.Background(), "course-PROG1", &dto.CreateAssignmentRequest{Seq: 1}, "user-001")
	if !errors.Is(err, ErrAssignmentSeqTaken) {
		t.Errorf("期望 ErrAssignmentSeqTaken，实际: %v", err)
	}
}

func TestAssignmentService_Create_CourseNotFound(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewAssignmentService(repo, zap.NewNop())

	_, err := svc.Create(context.Background(), "nonexistent", &dto.CreateAssignmentRequest{Seq: 1}, "user-001")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── GetByID / ListByCourse 测试 ──

func TestAssignmentService_GetByID_WithSubmission(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")
	mocks.submissions.byAssignment["tp-001"] = &model.Submission{
		SubmissionID: "sub-001", AssignmentID: "tp-001", FileName: "rendus.zip",
	}
	svc := NewAssignmentService(repo, zap.NewNop())

	resp, err := svc.GetByID(context.Background(), "tp-001")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if resp.Submission == nil || resp.Submission.FileName != "rendus.zip" {
		t.Errorf("应带出提交记录: %+v", resp.Submission)
	}
}

func TestAssignmentService_ListByCourse_Ordered(t *testing.T) {
	repo, mocks := newMockRepository()
	mocks.courses.courses["course-PROG1"] = &model.Course{CourseID: "course-PROG1", Code: "PROG1"}
	mocks.assignments.assignments["tp-002"] = &model.Assignment{AssignmentID: "tp-002", CourseID: "course-PROG1", Seq: 2}
	mocks.assignments.assignments["tp-001"] = &model.Assignment{AssignmentID: "tp-001", CourseID: "course-PROG1", Seq: 1}
	svc := NewAssignmentService(repo, zap.NewNop())

	result, err := svc.ListByCourse(context.Background(), "course-PROG1")
	if err != nil {
		t.Fatalf("ListByCourse 应成功: %v", err)
	}
	if len(result) != 2 || result[0].Seq != 1 || result[1].Seq != 2 {
		t.Errorf("TP 应按序号排序: %+v", result)
	}
}

// ── Update / Delete 测试 ──

func TestAssignmentService_Update_SeqImmutable(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")
	svc := NewAssignmentService(repo, zap.NewNop())

	title := "新标题"
	resp, err := svc.Update(context.Background(), "tp-001", &dto.UpdateAssignmentRequest{Title: &title}, "user-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Title != "新标题" {
		t.Errorf("标题未更新: %s", resp.Title)
	}
	if resp.Seq != 1 {
		t.Errorf("序号不可变更，实际=%d", resp.Seq)
	}
}

func TestAssignmentService_Delete_NotFound(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewAssignmentService(repo, zap.NewNop())

	err := svc.Delete(context.Background(), "nonexistent", "user-001")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际: %v", err)
	}
}
