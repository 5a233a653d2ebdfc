package repository

import (
	"context"

	"gorm.io/gorm"

	"tphub/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string, deletedBy string) error
	Enroll(ctx context.Context, courseID string, studentIDs []string) error
	ListStudents(ctx context.Context, courseID string) ([]model.Student, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// Enroll 将学生加入课程（重复选课忽略）
func (r *courseRepo) Enroll(ctx context.Context, courseID string, studentIDs []string) error {
	for _, sid := range studentIDs {
		err := r.db.WithContext(ctx).
			Exec("INSERT INTO enrollments (course_id, student_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				courseID, sid).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ListStudents 列出课程的选课学生（核对流水线的名册来源）
func (r *courseRepo) ListStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN enrollments e ON e.student_id = students.student_id").
		Where("e.course_id = ?", courseID).
		Order("students.full_name ASC").
		Find(&students).Error
	return students, err
}
