package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tphub/internal/dto"
	"tphub/internal/model"
	"tphub/internal/repository"
)

// ── 学生模块业务错误 ──

var ErrStudentNotFound = errors.New("学生不存在")

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	student := &model.Student{
		FullName: req.FullName,
		Email:    req.Email,
	}
	student.CreatedBy = &callerID
	student.UpdatedBy = &callerID

	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	return s.toStudentResponse(student), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toStudentResponse(student), nil
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.repo.Student.List(ctx)
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *s.toStudentResponse(&students[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	student.UpdatedBy = &callerID

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toStudentResponse(student), nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, id string, callerID string) error {
	_, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Student.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *studentService) toStudentResponse(student *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:       student.StudentID,
		FullName: student.FullName,
		Email:    student.Email,
	}
}
