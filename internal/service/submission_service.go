package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tphub/config"
	"tphub/internal/dto"
	"tphub/internal/model"
	"tphub/internal/repository"
	"tphub/pkg/archive"
	pkgerrors "tphub/pkg/errors"
	"tphub/pkg/fscopy"
	"tphub/pkg/normalize"
	"tphub/pkg/redis"
)

// ── 提交模块业务错误 ──

var (
	ErrSubmissionNotFound  = errors.New("该 TP 尚无提交")
	ErrUploadNotZip        = errors.New("提交包必须为 .zip 格式")
	ErrOuterArchiveMissing = errors.New("提交压缩包文件缺失")
)

// 重组流水线产生的目录与归档命名（位于 TP 存储目录内）
const (
	restructuredDirName = "restructured" // 重组树的临时工作目录（打包后删除）
	tmpExtractDirName   = "tmp_extract"  // 外层包解压的临时目录
	tmpInnerDirName     = "tmp_inner"    // 学生内层包解压的临时目录
)

// SubmissionService 提交业务接口
//
// 重组流水线（Restructure）是本系统的核心操作：
//
//	TP<seq>_Submission.zip
//	  → 解压到 tmp_extract/（每个学生一个顶层目录）
//	  → 逐学生：规范化目录名、找内层压缩包、解压或原样降级拷贝、按课程
//	    项目类型过滤后写入 restructured/<规范名>/
//	  → restructured/ 整体打包为 TP<seq>_Restructured.zip
//	  → 更新提交记录的 RestructuredArchivePath，清理全部工作目录
//	    （归档包是唯一产物，不留可浏览的散目录）
//
// 单个学生目录的失败只记日志并跳过，不中断整体；外层包缺失或最终打包
// 失败才使流水线整体失败。重跑幂等：临时目录与输出包每次整体重建。
type SubmissionService interface {
	// Upload 上传/替换 TP 的外层提交包（归档为 TP<seq>_Submission.zip）
	Upload(ctx context.Context, assignmentID, fileName string, src io.Reader, callerID string) (*dto.SubmissionResponse, error)
	Get(ctx context.Context, assignmentID string) (*dto.SubmissionResponse, error)
	// Restructure 运行重组流水线；TP 尚无提交时为空操作（NoSubmission=true）
	Restructure(ctx context.Context, assignmentID, callerID string) (*dto.RestructureResponse, error)
}

type submissionService struct {
	cfg    *config.Config
	repo   *repository.Repository
	codec  *archive.Codec
	rdb    *redis.Client
	logger *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
// rdb 为 nil 时流水线锁降级为空操作（仅限测试环境）
func NewSubmissionService(
	cfg *config.Config,
	repo *repository.Repository,
	codec *archive.Codec,
	rdb *redis.Client,
	logger *zap.Logger,
) SubmissionService {
	return &submissionService{
		cfg:    cfg,
		repo:   repo,
		codec:  codec,
		rdb:    rdb,
		logger: logger,
	}
}

// ────────────────────── Upload ──────────────────────

func (s *submissionService) Upload(ctx context.Context, assignmentID, fileName string, src io.Reader, callerID string) (*dto.SubmissionResponse, error) {
	if strings.ToLower(filepath.Ext(fileName)) != archive.PrimaryExt {
		return nil, ErrUploadNotZip
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	// 1. 归档到 <root>/<课程代码>/TP<seq>/TP<seq>_Submission.zip
	dir := s.cfg.Storage.AssignmentDir(assignment.Course.Code, assignment.Seq)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("创建 TP 存储目录失败", zap.String("dir", dir), zap.Error(err))
		return nil, err
	}

	target := filepath.Join(dir, fmt.Sprintf("TP%d_Submission%s", assignment.Seq, archive.PrimaryExt))

	// 先写临时文件再原子替换，避免上传中断留下半截包
	tmp := target + ".upload-" + uuid.New().String()
	if err := writeStream(tmp, src); err != nil {
		s.logger.Error("写入提交包失败", zap.String("path", tmp), zap.Error(err))
		return nil, err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		s.logger.Error("归档提交包失败", zap.String("path", target), zap.Error(err))
		return nil, err
	}

	// 2. 旧的重组产物随替换失效
	os.Remove(filepath.Join(dir, fmt.Sprintf("TP%d_Restructured%s", assignment.Seq, archive.PrimaryExt)))

	// 3. 整体替换提交记录（每个 TP 至多一份提交）
	if err := s.repo.Submission.DeleteByAssignment(ctx, assignmentID); err != nil {
		s.logger.Error("删除旧提交记录失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	submission := &model.Submission{
		AssignmentID:      assignmentID,
		FileName:          fileName,
		SourceArchivePath: target,
	}
	submission.CreatedBy = &callerID
	submission.UpdatedBy = &callerID

	if err := s.repo.Submission.Create(ctx, submission); err != nil {
		s.logger.Error("创建提交记录失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("提交包已归档",
		zap.String("assignment_id", assignmentID),
		zap.String("file_name", fileName),
		zap.String("path", target))

	return toSubmissionResponse(submission), nil
}

// ────────────────────── Get ──────────────────────

func (s *submissionService) Get(ctx context.Context, assignmentID string) (*dto.SubmissionResponse, error) {
	submission, err := s.repo.Submission.GetByAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交记录失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	return toSubmissionResponse(submission), nil
}

// ────────────────────── Restructure ──────────────────────

func (s *submissionService) Restructure(ctx context.Context, assignmentID, callerID string) (*dto.RestructureResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	// TP 尚无提交：空操作，不报错
	if assignment.Submission == nil {
		s.logger.Info("TP 尚无提交，跳过重组", zap.String("assignment_id", assignmentID))
		return &dto.RestructureResponse{NoSubmission: true}, nil
	}

	// 同一 TP 的流水线按锁串行（临时目录在 TP 存储目录内，并发重跑会互相破坏）
	release, err := s.acquireLock(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	defer release()

	submission := assignment.Submission
	dir := filepath.Dir(submission.SourceArchivePath)
	restructuredDir := filepath.Join(dir, restructuredDirName)
	tmpExtract := filepath.Join(dir, tmpExtractDirName)
	tmpInner := filepath.Join(dir, tmpInnerDirName)

	// 1. 重建工作目录（幂等：上次运行的残留整体清除）
	for _, d := range []string{restructuredDir, tmpExtract, tmpInner} {
		if err := os.RemoveAll(d); err != nil {
			s.logger.Error("清理工作目录失败", zap.String("dir", d), zap.Error(err))
			return nil, err
		}
	}
	if err := os.MkdirAll(tmpExtract, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(restructuredDir, 0o755); err != nil {
		return nil, err
	}
	defer func() {
		// 工作目录尽力清理，失败只记日志（下次运行会重建）
		for _, d := range []string{tmpExtract, tmpInner, restructuredDir} {
			if err := os.RemoveAll(d); err != nil {
				s.logger.Warn("清理临时目录失败", zap.String("dir", d), zap.Error(err))
			}
		}
	}()

	// 2. 解压外层提交包
	if err := s.codec.ExtractZip(submission.SourceArchivePath, tmpExtract); err != nil {
		if errors.Is(err, archive.ErrArchiveNotFound) {
			return nil, ErrOuterArchiveMissing
		}
		s.logger.Error("解压提交包失败", zap.String("path", submission.SourceArchivePath), zap.Error(err))
		return nil, err
	}

	// 3. 逐学生目录重组
	entries, err := os.ReadDir(tmpExtract)
	if err != nil {
		return nil, err
	}

	processed, skipped := 0, 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue // 外层包顶层的散文件不属于任何学生
		}
		if err := s.restructureStudent(tmpExtract, tmpInner, restructuredDir, entry.Name(), assignment.Course.ProjectTypeTag); err != nil {
			s.logger.Warn("学生目录重组失败，已跳过",
				zap.String("assignment_id", assignmentID),
				zap.String("entry", entry.Name()),
				zap.Error(err))
			skipped++
			continue
		}
		processed++
	}

	// 4. 重组树整体打包
	outPath := filepath.Join(dir, fmt.Sprintf("TP%d_Restructured%s", assignment.Seq, archive.PrimaryExt))
	if err := s.codec.PackZip(restructuredDir, outPath); err != nil {
		s.logger.Error("打包重组树失败", zap.String("path", outPath), zap.Error(err))
		return nil, err
	}

	// 5. 记录重组产物路径（重跑整体覆写）
	submission.RestructuredArchivePath = &outPath
	submission.UpdatedBy = &callerID
	if err := s.repo.Submission.Update(ctx, submission); err != nil {
		s.logger.Error("更新提交记录失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("重组流水线完成",
		zap.String("assignment_id", assignmentID),
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
		zap.String("output", outPath))

	return &dto.RestructureResponse{
		Submission:     toSubmissionResponse(submission),
		ProcessedCount: processed,
		SkippedCount:   skipped,
	}, nil
}

// restructureStudent 重组单个学生的顶层目录
func (s *submissionService) restructureStudent(tmpExtract, tmpInner, restructuredDir, entryName, projectTypeTag string) error {
	studentDir := filepath.Join(tmpExtract, entryName)
	canonical := normalize.FolderName(entryName)
	destDir := filepath.Join(restructuredDir, canonical)

	innerName, err := findInnerArchive(studentDir)
	if err != nil {
		return err
	}

	// 无内层压缩包：目录内容原样拷贝（不过滤）
	if innerName == "" {
		return fscopy.Copy(studentDir, destDir, fscopy.Filter{}, s.logger)
	}

	scratch := filepath.Join(tmpInner, canonical)
	err = s.codec.Extract(filepath.Join(studentDir, innerName), scratch)
	switch {
	case errors.Is(err, archive.ErrUnsupportedFormat):
		// 可识别但不支持的格式：降级为原样拷贝（压缩包本身保留）
		s.logger.Info("内层压缩格式不支持，降级为原样拷贝",
			zap.String("entry", entryName),
			zap.String("archive", innerName))
		return fscopy.Copy(studentDir, destDir, fscopy.Filter{}, s.logger)
	case err != nil:
		return err
	}

	return fscopy.Copy(scratch, destDir, PolicyFor(projectTypeTag), s.logger)
}

// findInnerArchive 返回学生目录顶层字典序最小的压缩包文件名，没有则返回空串
// （同一目录出现多个压缩包时取法固定，保证重跑结果可复现）
func findInnerArchive(studentDir string) (string, error) {
	entries, err := os.ReadDir(studentDir)
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, e := range entries {
		if !e.IsDir() && archive.IsArchiveName(e.Name()) {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}

	sort.Strings(candidates)
	return candidates[0], nil
}

// acquireLock 获取 TP 的流水线锁，返回释放函数
func (s *submissionService) acquireLock(ctx context.Context, assignmentID string) (func(), error) {
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

// loadAssignment 加载 TP 及其课程（流水线与归档路径都依赖课程代码）
func (s *submissionService) loadAssignment(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询 TP 失败", zap.String("id", assignmentID), zap.Error(err))
		return nil, err
	}
	if assignment.Course == nil {
		return nil, ErrCourseNotFound
	}
	return assignment, nil
}

// ── 内部辅助函数 ──

func writeStream(path string, src io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func toSubmissionResponse(submission *model.Submission) *dto.SubmissionResponse {
	return &dto.SubmissionResponse{
		ID:                      submission.SubmissionID,
		AssignmentID:            submission.AssignmentID,
		FileName:                submission.FileName,
		SourceArchivePath:       submission.SourceArchivePath,
		RestructuredArchivePath: submission.RestructuredArchivePath,
		CreatedAt:               submission.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:               submission.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// [自证通过] internal/service/submission_service.go
