package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"tphub/config"
	"tphub/internal/model"
	"tphub/pkg/archive"
)

// ── 测试辅助 ──

func testPipelineConfig(root string) *config.Config {
	return &config.Config{
		Storage:  config.StorageConfig{Root: root},
		Pipeline: config.PipelineConfig{MatchMode: "substring", LockTTL: time.Minute},
	}
}

// seedCourseAndAssignment 预置一门课和一个 TP（seq=1）
func seedCourseAndAssignment(mocks *testMocks, projectTypeTag string) {
	mocks.courses.courses["course-PROG1"] = &model.Course{
		CourseID:       "course-PROG1",
		Code:           "PROG1",
		Name:           "程序设计一",
		ProjectTypeTag: projectTypeTag,
	}
	mocks.assignments.assignments["tp-001"] = &model.Assignment{
		AssignmentID: "tp-001",
		CourseID:     "course-PROG1",
		Seq:          1,
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
}

// buildZip 将 files（相对路径 → 内容）打包为 outPath 的 zip
func buildZip(t *testing.T, codec *archive.Codec, files map[string]string, outPath string) {
	t.Helper()
	stage := t.TempDir()
	for rel, content := range files {
		writeTestFile(t, filepath.Join(stage, rel), content)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := codec.PackZip(stage, outPath); err != nil {
		t.Fatalf("打包测试 zip 失败: %v", err)
	}
}

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("路径不应存在: %s", path)
	}
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("路径应存在: %s (%v)", path, err)
	}
}

// ── Restructure 测试 ──

func TestSubmissionService_Restructure_NoSubmission(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, ProjectTypeJava)

	logger := zap.NewNop()
	svc := NewSubmissionService(testPipelineConfig(t.TempDir()), repo, archive.NewCodec(logger), nil, logger)

	resp, err := svc.Restructure(context.Background(), "tp-001", "user-001")
	if err != nil {
		t.Fatalf("无提交时应为空操作而非错误: %v", err)
	}
	if !resp.NoSubmission {
		t.Error("期望 NoSubmission=true")
	}
	if resp.Submission != nil {
		t.Error("空操作不应返回提交记录")
	}
}

func TestSubmissionService_Restructure_Success(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, ProjectTypeJava)

	logger := zap.NewNop()
	codec := archive.NewCodec(logger)
	root := t.TempDir()
	cfg := testPipelineConfig(root)

	// 外层包：三个学生目录
	//   Scout Mark  → 内层 zip（java 过滤生效）
	//   Riggs Helly → 内层 .7z（格式不支持，降级为原样拷贝）
	//   José Núñez  → 无内层压缩包（原样拷贝）
	stage := t.TempDir()
	innerA := filepath.Join(stage, "Scout Mark_31415_assignsubmission_file_", "project.zip")
	buildZip(t, codec, map[string]string{
		"src/Main.java":     "public class Main {}",
		"target/app.class":  "bytecode",
		".git/config":       "[core]",
		"README.md":         "# projet",
		"projet.iml":        "<module/>",
		filepath.Join("src", "util", "Helper.java"): "public class Helper {}",
	}, innerA)
	writeTestFile(t, filepath.Join(stage, "Riggs Helly_27182_assignsubmission_file_", "notes.7z"), "not-a-real-7z")
	writeTestFile(t, filepath.Join(stage, "Riggs Helly_27182_assignsubmission_file_", "rapport.txt"), "rapport")
	writeTestFile(t, filepath.Join(stage, "José Núñez_99999_assignsubmission_file_", "main.py"), "print('hi')")

	dir := cfg.Storage.AssignmentDir("PROG1", 1)
	submissionPath := filepath.Join(dir, "TP1_Submission.zip")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("创建存储目录失败: %v", err)
	}
	if err := codec.PackZip(stage, submissionPath); err != nil {
		t.Fatalf("打包外层提交包失败: %v", err)
	}
	mocks.submissions.byAssignment["tp-001"] = &model.Submission{
		SubmissionID:      "sub-001",
		AssignmentID:      "tp-001",
		FileName:          "rendus_tp1.zip",
		SourceArchivePath: submissionPath,
	}

	svc := NewSubmissionService(cfg, repo, codec, nil, logger)

	resp, err := svc.Restructure(context.Background(), "tp-001", "user-001")
	if err != nil {
		t.Fatalf("Restructure 应成功: %v", err)
	}
	if resp.ProcessedCount != 3 {
		t.Errorf("期望 ProcessedCount=3，实际=%d", resp.ProcessedCount)
	}
	if resp.SkippedCount != 0 {
		t.Errorf("期望 SkippedCount=0，实际=%d", resp.SkippedCount)
	}
	if resp.Submission == nil || resp.Submission.RestructuredArchivePath == nil {
		t.Fatal("重组成功后应记录产物路径")
	}

	outPath := *resp.Submission.RestructuredArchivePath
	if filepath.Base(outPath) != "TP1_Restructured.zip" {
		t.Errorf("产物文件名应为 TP1_Restructured.zip，实际=%s", filepath.Base(outPath))
	}
	mustExist(t, outPath)

	// 解包验证重组树内容
	check := t.TempDir()
	if err := codec.ExtractZip(outPath, check); err != nil {
		t.Fatalf("解压重组包失败: %v", err)
	}

	// 学生 A：目录名规范化 + 内层解压 + java 过滤
	mustExist(t, filepath.Join(check, "ScoutMark", "src", "Main.java"))
	mustExist(t, filepath.Join(check, "ScoutMark", "src", "util", "Helper.java"))
	mustExist(t, filepath.Join(check, "ScoutMark", "README.md"))
	mustNotExist(t, filepath.Join(check, "ScoutMark", "target"))
	mustNotExist(t, filepath.Join(check, "ScoutMark", ".git"))
	mustNotExist(t, filepath.Join(check, "ScoutMark", "projet.iml"))
	mustNotExist(t, filepath.Join(check, "ScoutMark", "project.zip"))

	// 学生 B：格式不支持，原样拷贝（压缩包保留，不过滤）
	mustExist(t, filepath.Join(check, "RiggsHelly", "notes.7z"))
	mustExist(t, filepath.Join(check, "RiggsHelly", "rapport.txt"))

	// 学生 C：无内层包，原样拷贝；变音符号保留在目录名中
	mustExist(t, filepath.Join(check, "JoséNúñez", "main.py"))

	// 全部工作目录已清理，只留归档产物
	mustNotExist(t, filepath.Join(dir, tmpExtractDirName))
	mustNotExist(t, filepath.Join(dir, tmpInnerDirName))
	mustNotExist(t, filepath.Join(dir, restructuredDirName))
}

func TestSubmissionService_Restructure_Rerun(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")

	logger := zap.NewNop()
	codec := archive.NewCodec(logger)
	cfg := testPipelineConfig(t.TempDir())

	stage := t.TempDir()
	writeTestFile(t, filepath.Join(stage, "Scout Mark_1_file_", "main.c"), "int main() {}")

	dir := cfg.Storage.AssignmentDir("PROG1", 1)
	submissionPath := filepath.Join(dir, "TP1_Submission.zip")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("创建存储目录失败: %v", err)
	}
	if err := codec.PackZip(stage, submissionPath); err != nil {
		t.Fatalf("打包失败: %v", err)
	}
	mocks.submissions.byAssignment["tp-001"] = &model.Submission{
		SubmissionID:      "sub-001",
		AssignmentID:      "tp-001",
		SourceArchivePath: submissionPath,
	}

	svc := NewSubmissionService(cfg, repo, codec, nil, logger)

	first, err := svc.Restructure(context.Background(), "tp-001", "user-001")
	if err != nil {
		t.Fatalf("第一次运行应成功: %v", err)
	}
	second, err := svc.Restructure(context.Background(), "tp-001", "user-001")
	if err != nil {
		t.Fatalf("重跑应成功: %v", err)
	}
	if first.ProcessedCount != second.ProcessedCount {
		t.Errorf("重跑结果应一致: %d != %d", first.ProcessedCount, second.ProcessedCount)
	}
	mustExist(t, *second.Submission.RestructuredArchivePath)
}

func TestSubmissionService_Restructure_OuterArchiveMissing(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")

	logger := zap.NewNop()
	cfg := testPipelineConfig(t.TempDir())
	mocks.submissions.byAssignment["tp-001"] = &model.Submission{
		SubmissionID:      "sub-001",
		AssignmentID:      "tp-001",
		SourceArchivePath: filepath.Join(cfg.Storage.Root, "PROG1", "TP1", "TP1_Submission.zip"),
	}

	svc := NewSubmissionService(cfg, repo, archive.NewCodec(logger), nil, logger)

	_, err := svc.Restructure(context.Background(), "tp-001", "user-001")
	if !errors.Is(err, ErrOuterArchiveMissing) {
		t.Errorf("期望 ErrOuterArchiveMissing，实际: %v", err)
	}
}

func TestSubmissionService_Restructure_AssignmentNotFound(t *testing.T) {
	repo, _ := newMockRepository()
	logger := zap.NewNop()
	svc := NewSubmissionService(testPipelineConfig(t.TempDir()), repo, archive.NewCodec(logger), nil, logger)

	_, err := svc.Restructure(context.Background(), "nonexistent", "user-001")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际: %v", err)
	}
}

// ── Upload 测试 ──

func TestSubmissionService_Upload_Success(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")

	logger := zap.NewNop()
	cfg := testPipelineConfig(t.TempDir())
	svc := NewSubmissionService(cfg, repo, archive.NewCodec(logger), nil, logger)

	resp, err := svc.Upload(context.Background(), "tp-001", "rendus_tp1.zip", strings.NewReader("zip-bytes"), "user-001")
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	if resp.FileName != "rendus_tp1.zip" {
		t.Errorf("期望 FileName=rendus_tp1.zip，实际=%s", resp.FileName)
	}

	want := filepath.Join(cfg.Storage.AssignmentDir("PROG1", 1), "TP1_Submission.zip")
	if resp.SourceArchivePath != want {
		t.Errorf("归档路径不符：期望=%s，实际=%s", want, resp.SourceArchivePath)
	}
	mustExist(t, want)

	content, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("读取归档失败: %v", err)
	}
	if string(content) != "zip-bytes" {
		t.Errorf("归档内容不符: %q", content)
	}
}

func TestSubmissionService_Upload_NotZip(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")

	logger := zap.NewNop()
	svc := NewSubmissionService(testPipelineConfig(t.TempDir()), repo, archive.NewCodec(logger), nil, logger)

	_, err := svc.Upload(context.Background(), "tp-001", "rendus.rar", strings.NewReader("x"), "user-001")
	if !errors.Is(err, ErrUploadNotZip) {
		t.Errorf("期望 ErrUploadNotZip，实际: %v", err)
	}
}

func TestSubmissionService_Upload_ReplacesExisting(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCourseAndAssignment(mocks, "")

	logger := zap.NewNop()
	cfg := testPipelineConfig(t.TempDir())
	svc := NewSubmissionService(cfg, repo, archive.NewCodec(logger), nil, logger)

	if _, err := svc.Upload(context.Background(), "tp-001", "v1.zip", strings.NewReader("v1"), "user-001"); err != nil {
		t.Fatalf("首次上传应成功: %v", err)
	}
	// 模拟已有重组产物
	old := mocks.submissions.byAssignment["tp-001"]
	stale := filepath.Join(cfg.Storage.AssignmentDir("PROG1", 1), "TP1_Restructured.zip")
	writeTestFile(t, stale, "stale")
	old.RestructuredArchivePath = &stale

	resp, err := svc.Upload(context.Background(), "tp-001", "v2.zip", strings.NewReader("v2"), "user-001")
	if err != nil {
		t.Fatalf("重新上传应成功: %v", err)
	}
	if resp.FileName != "v2.zip" {
		t.Errorf("期望 FileName=v2.zip，实际=%s", resp.FileName)
	}
	if resp.RestructuredArchivePath != nil {
		t.Error("重新上传后重组产物路径应清空")
	}
	mustNotExist(t, stale)

	content, _ := os.ReadFile(resp.SourceArchivePath)
	if string(content) != "v2" {
		t.Errorf("归档内容应被替换: %q", content)
	}
}

// ── findInnerArchive 测试 ──

func TestFindInnerArchive_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "b.zip"), "b")
	writeTestFile(t, filepath.Join(dir, "a.zip"), "a")
	writeTestFile(t, filepath.Join(dir, "c.rar"), "c")
	writeTestFile(t, filepath.Join(dir, "rapport.txt"), "txt")

	name, err := findInnerArchive(dir)
	if err != nil {
		t.Fatalf("findInnerArchive 失败: %v", err)
	}
	// 多个压缩包时取字典序最小
	if name != "a.zip" {
		t.Errorf("期望 a.zip，实际=%s", name)
	}
}

func TestFindInnerArchive_None(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "rapport.txt"), "txt")

	name, err := findInnerArchive(dir)
	if err != nil {
		t.Fatalf("findInnerArchive 失败: %v", err)
	}
	if name != "" {
		t.Errorf("无压缩包时应返回空串，实际=%s", name)
	}
}

func TestToSubmissionResponse_TimestampUTC(t *testing.T) {
	loc := time.FixedZone("CET", 2*3600)
	submission := &model.Submission{
		SubmissionID: "sub-001",
		AssignmentID: "tp-001",
		FileName:     "rendus.zip",
	}
	submission.CreatedAt = time.Date(2026, 3, 14, 10, 30, 0, 0, loc)
	submission.UpdatedAt = submission.CreatedAt

	resp := toSubmissionResponse(submission)

	// 非 UTC 时区的时间戳必须先折算到 UTC 再标注 Z
	if resp.CreatedAt != "2026-03-14T08:30:00Z" {
		t.Errorf("期望 2026-03-14T08:30:00Z，实际=%s", resp.CreatedAt)
	}
	if _, err := time.Parse(time.RFC3339, resp.UpdatedAt); err != nil {
		t.Errorf("UpdatedAt 应为合法 RFC3339: %v", err)
	}
}
