package repository

import (
	"context"

	"gorm.io/gorm"

	"tphub/internal/model"
)

// AssignmentRepository TP 数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	// GetByID 预加载所属课程与提交记录（流水线需要两者）
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Submission").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Submission").
		Where("course_id = ?", courseID).
		Order("seq ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
