package repository

import (
	"context"

	"gorm.io/gorm"

	"tphub/internal/model"
)

// StudentStatusRepository 学生提交状态数据访问接口
type StudentStatusRepository interface {
	Create(ctx context.Context, status *model.StudentStatus) error
	GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID string) (*model.StudentStatus, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]model.StudentStatus, error)
	Update(ctx context.Context, status *model.StudentStatus) error
}

type studentStatusRepo struct {
	db *gorm.DB
}

// NewStudentStatusRepo 创建 StudentStatusRepository 实例
func NewStudentStatusRepo(db *gorm.DB) StudentStatusRepository {
	return &studentStatusRepo{db: db}
}

func (r *studentStatusRepo) Create(ctx context.Context, status *model.StudentStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *studentStatusRepo) GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID string) (*model.StudentStatus, error) {
	var status model.StudentStatus
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id = ?", studentID, assignmentID).
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *studentStatusRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]model.StudentStatus, error) {
	var statuses []model.StudentStatus
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("assignment_id = ?", assignmentID).
		Find(&statuses).Error
	return statuses, err
}

func (r *studentStatusRepo) Update(ctx context.Context, status *model.StudentStatus) error {
	return r.db.WithContext(ctx).Save(status).Error
}
