// Package archive 负责提交压缩包的解压与打包。
//
// 主格式 .zip 支持解压与打包；旧格式 .rar 仅支持解压；
// 其余可识别的压缩后缀（.7z / .tar.gz 等）没有对应实现，
// 解压时返回 ErrUnsupportedFormat，由调用方降级为原样拷贝。
package archive

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrArchiveNotFound 压缩包路径不存在
	ErrArchiveNotFound = errors.New("压缩包不存在")
	// ErrInvalidSource 打包源不是一个已存在的目录
	ErrInvalidSource = errors.New("打包源目录不存在或不是目录")
	// ErrUnsupportedFormat 后缀可识别但没有对应的解压实现
	ErrUnsupportedFormat = errors.New("已识别但不支持的压缩格式")
)

const (
	// PrimaryExt 主格式后缀（外层提交包与重组输出包固定使用）
	PrimaryExt = ".zip"
	// SecondaryExt 旧格式后缀（仅解压）
	SecondaryExt = ".rar"
)

// recognizedExts 全部可识别的压缩后缀，按匹配优先级排列
// （复合后缀在前，避免 .tar.gz 被 .gz 抢先匹配）
var recognizedExts = []string{".tar.gz", PrimaryExt, SecondaryExt, ".7z", ".tgz", ".tar", ".gz"}

type extractFunc func(archivePath, destDir string) error

// Codec 多格式压缩编解码器
// 按规范化（小写）后缀将解压请求分发到对应实现
type Codec struct {
	logger     *zap.Logger
	extractors map[string]extractFunc
}

// NewCodec 创建 Codec 并注册内置格式
func NewCodec(logger *zap.Logger) *Codec {
	c := &Codec{logger: logger}
	c.extractors = map[string]extractFunc{
		PrimaryExt:   c.ExtractZip,
		SecondaryExt: c.ExtractRar,
	}
	return c
}

// matchExt 返回文件名匹配到的可识别压缩后缀（小写），无匹配返回空串
func matchExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range recognizedExts {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// IsArchiveName 判断文件名是否带可识别的压缩后缀
func IsArchiveName(name string) bool {
	return matchExt(name) != ""
}

// Extract 按文件名后缀分发解压。
// 后缀可识别但无实现时返回 ErrUnsupportedFormat（包装了后缀信息），
// 调用方应将其视为降级信号而非致命错误。
func (c *Codec) Extract(archivePath, destDir string) error {
	ext := matchExt(archivePath)
	if ext == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, archivePath)
	}
	fn, ok := c.extractors[ext]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return fn(archivePath, destDir)
}

// [自证通过] pkg/archive/archive.go
