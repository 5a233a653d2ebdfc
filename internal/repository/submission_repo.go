package repository

import (
	"context"

	"gorm.io/gorm"

	"tphub/internal/model"
)

// SubmissionRepository 提交记录数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByAssignment(ctx context.Context, assignmentID string) (*model.Submission, error)
	Update(ctx context.Context, submission *model.Submission) error
	DeleteByAssignment(ctx context.Context, assignmentID string) error
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepo) GetByAssignment(ctx context.Context, assignmentID string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepo) Update(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// DeleteByAssignment 物理删除 TP 的提交记录（重新上传时旧记录整体替换）
func (r *submissionRepo) DeleteByAssignment(ctx context.Context, assignmentID string) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("assignment_id = ?", assignmentID).
		Delete(&model.Submission{}).Error
}
