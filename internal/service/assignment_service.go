package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tphub/internal/dto"
	"tphub/internal/model"
	"tphub/internal/repository"
)

// ── TP 模块业务错误 ──

var (
	ErrAssignmentNotFound = errors.New("TP 不存在")
	ErrAssignmentSeqTaken = errors.New("该课程下已存在相同序号的 TP")
)

// AssignmentService TP 业务接口
type AssignmentService interface {
	Create(ctx context.Context, courseID string, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	ListByCourse(ctx context.Context, courseID string) ([]dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, courseID string, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}

	// 课程内序号唯一（序号决定 TP<seq>/ 目录名与归档文件名）
	existing, err := s.repo.Assignment.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出 TP 失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	for i := range existing {
		if existing[i].Seq == req.Seq {
			return nil, ErrAssignmentSeqTaken
		}
	}

	assignment := &model.Assignment{
		CourseID: courseID,
		Seq:      req.Seq,
		Title:    req.Title,
	}
	assignment.CreatedBy = &callerID
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("创建 TP 失败", zap.Error(err))
		return nil, err
	}

	return s.toAssignmentResponse(assignment), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询 TP 失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toAssignmentResponse(assignment), nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *assignmentService) ListByCourse(ctx context.Context, courseID string) ([]dto.AssignmentResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出 TP 失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, *s.toAssignmentResponse(&assignments[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询 TP 失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 序号不可变更：归档目录与文件名均以序号命名
	if req.Title != nil {
		assignment.Title = *req.Title
	}
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("更新 TP 失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toAssignmentResponse(assignment), nil
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id string, callerID string) error {
	_, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("查询 TP 失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Assignment.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除 TP 失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *assignmentService) toAssignmentResponse(assignment *model.Assignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:        assignment.AssignmentID,
		CourseID:  assignment.CourseID,
		Seq:       assignment.Seq,
		Title:     assignment.Title,
		CreatedAt: assignment.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: assignment.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if assignment.Submission != nil {
		resp.Submission = toSubmissionResponse(assignment.Submission)
	}
	return resp
}
