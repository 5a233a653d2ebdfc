package fscopy

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	target := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

// 排除目录整棵剪枝：目标端不得出现该目录及任何后代
func TestCopy_PrunesExcludedDirs(t *testing.T) {
	src := t.TempDir()
	write(t, src, "Main.java", "public class Main {}")
	write(t, src, ".git/HEAD", "ref: refs/heads/main")
	write(t, src, ".git/objects/ab/cdef", "blob")
	write(t, src, "target/classes/Main.class", "bytecode")
	write(t, src, "src/App.java", "class App {}")

	dst := t.TempDir()
	filter := NewFilter([]string{".git", "target"}, nil)
	if err := Copy(src, dst, filter, zap.NewNop()); err != nil {
		t.Fatalf("Copy 失败: %v", err)
	}

	if !exists(dst, "Main.java") || !exists(dst, "src/App.java") {
		t.Error("源文件应被拷贝")
	}
	for _, rel := range []string{".git", ".git/HEAD", "target", "target/classes/Main.class"} {
		if exists(dst, rel) {
			t.Errorf("排除目录的内容不应出现在目标端: %s", rel)
		}
	}
}

// 文件排除同时支持精确名与后缀
func TestCopy_SkipsExcludedFiles(t *testing.T) {
	src := t.TempDir()
	write(t, src, "app.iml", "<module/>")
	write(t, src, ".DS_Store", "junk")
	write(t, src, "notes/.DS_Store", "junk")
	write(t, src, "Main.java", "x")

	dst := t.TempDir()
	filter := NewFilter(nil, []string{".iml", ".DS_Store"})
	if err := Copy(src, dst, filter, zap.NewNop()); err != nil {
		t.Fatalf("Copy 失败: %v", err)
	}

	if !exists(dst, "Main.java") {
		t.Error("Main.java 应被拷贝")
	}
	for _, rel := range []string{"app.iml", ".DS_Store", "notes/.DS_Store"} {
		if exists(dst, rel) {
			t.Errorf("排除文件不应被拷贝: %s", rel)
		}
	}
}

// 零值过滤器拷贝一切
func TestCopy_EmptyFilterCopiesEverything(t *testing.T) {
	src := t.TempDir()
	write(t, src, ".git/config", "x")
	write(t, src, "a/b/c.txt", "深层文件")

	dst := t.TempDir()
	if err := Copy(src, dst, Filter{}, zap.NewNop()); err != nil {
		t.Fatalf("Copy 失败: %v", err)
	}

	if !exists(dst, ".git/config") || !exists(dst, "a/b/c.txt") {
		t.Error("空过滤器应拷贝全部内容")
	}

	data, _ := os.ReadFile(filepath.Join(dst, "a", "b", "c.txt"))
	if string(data) != "深层文件" {
		t.Errorf("内容不符: %q", data)
	}
}

// 目标端同名文件被覆盖
func TestCopy_OverwritesExisting(t *testing.T) {
	src := t.TempDir()
	write(t, src, "f.txt", "新")
	dst := t.TempDir()
	write(t, dst, "f.txt", "旧")

	if err := Copy(src, dst, Filter{}, zap.NewNop()); err != nil {
		t.Fatalf("Copy 失败: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dst, "f.txt"))
	if string(data) != "新" {
		t.Errorf("期望覆盖为\"新\"，实际: %q", data)
	}
}

func TestCopy_SourceMissing(t *testing.T) {
	err := Copy(filepath.Join(t.TempDir(), "nope"), t.TempDir(), Filter{}, zap.NewNop())
	if err == nil {
		t.Error("源目录不存在应返回错误")
	}
}
