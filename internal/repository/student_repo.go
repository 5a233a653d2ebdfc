package repository

import (
	"context"

	"gorm.io/gorm"

	"tphub/internal/model"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
