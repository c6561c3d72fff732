package recipe

import (
	"regexp"
	"strings"
)

var (
	boldPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern  = regexp.MustCompile(`\*(.*?)\*`)
	headingPattern = regexp.MustCompile(`^[ \t]*#+[ \t]+`)
	// 連續的項目符號一次去除，例如 "- * item"
	bulletPattern = regexp.MustCompile(`^[ \t]*(?:[•*\-][ \t]*)+`)
)

// Normalize 移除模型輸出中的 markdown 標記（粗體、斜體、標題、項目符號），
// 不改變文字內容與行結構，重複執行結果不變
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripLinePrefix(line)
	}
	return strings.Join(lines, "\n")
}

// stripLinePrefix 反覆去除行首的標題與項目符號，直到不再變化
func stripLinePrefix(line string) string {
	for {
		next := headingPattern.ReplaceAllString(line, "")
		next = bulletPattern.ReplaceAllString(next, "")
		if next == line {
			return line
		}
		line = next
	}
}

// StripBullet 去除單行行首的項目符號
func StripBullet(line string) string {
	return bulletPattern.ReplaceAllString(line, "")
}
