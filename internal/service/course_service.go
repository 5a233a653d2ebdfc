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

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound  = errors.New("课程不存在")
	ErrCourseCodeTaken = errors.New("课程代码已被占用")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Enroll 将学生加入课程名册（重复选课幂等忽略）
	Enroll(ctx context.Context, id string, req *dto.EnrollRequest) error
	// ListStudents 列出课程名册（按姓名排序）
	ListStudents(ctx context.Context, id string) ([]dto.StudentResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	// 课程代码唯一（代码即存储目录名，冲突会导致两门课共享子树）
	if _, err := s.repo.Course.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrCourseCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		Code:           req.Code,
		Name:           req.Name,
		ProjectTypeTag: req.ProjectTypeTag,
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return s.toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *s.toCourseResponse(&courses[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 课程代码不可变更：已有 TP 的归档目录以代码命名
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.ProjectTypeTag != nil {
		course.ProjectTypeTag = *req.ProjectTypeTag
	}
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toCourseResponse(course), nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string, callerID string) error {
	_, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Course.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Enroll ──────────────────────

func (s *courseService) Enroll(ctx context.Context, id string, req *dto.EnrollRequest) error {
	if _, err := s.repo.Course.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 逐个校验学生存在，避免名册里出现悬空引用
	for _, sid := range req.StudentIDs {
		if _, err := s.repo.Student.GetByID(ctx, sid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			s.logger.Error("查询学生失败", zap.String("id", sid), zap.Error(err))
			return err
		}
	}

	if err := s.repo.Course.Enroll(ctx, id, req.StudentIDs); err != nil {
		s.logger.Error("选课失败", zap.String("course_id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── ListStudents ──────────────────────

func (s *courseService) ListStudents(ctx context.Context, id string) ([]dto.StudentResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	students, err := s.repo.Course.ListStudents(ctx, id)
	if err != nil {
		s.logger.Error("列出课程名册失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, dto.StudentResponse{
			ID:       students[i].StudentID,
			FullName: students[i].FullName,
			Email:    students[i].Email,
		})
	}

	return result, nil
}

// ── 内部辅助方法 ──

func (s *courseService) toCourseResponse(course *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:             course.CourseID,
		Code:           course.Code,
		Name:           course.Name,
		ProjectTypeTag: course.ProjectTypeTag,
		CreatedAt:      course.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      course.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
