package analyzer

import (
	"regexp"
	"strings"
)

// 关键词两侧的边界：文本首尾，或者不是字母、数字、下划线的字符。
// 不使用 \b，因为 "c++"、"c#"、"node.js" 这类关键词以符号结尾时 \b 无法匹配。
const (
	leftBoundary  = `(?:^|[^\p{L}\p{N}_])`
	rightBoundary = `(?:$|[^\p{L}\p{N}_])`
)

// compileWordPattern 生成整词、大小写不敏感的匹配表达式
// 关键词内部的空白可以匹配任意长度的空白（包括换行）
func compileWordPattern(keyword string) *regexp.Regexp {
	parts := strings.Fields(keyword)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)` + leftBoundary + strings.Join(parts, `\s+`) + rightBoundary)
}

// keywordPattern 关键词及其编译后的表达式
type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

func compileKeywords(keywords []string) []keywordPattern {
	patterns := make([]keywordPattern, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		patterns = append(patterns, keywordPattern{keyword: kw, re: compileWordPattern(kw)})
	}
	return patterns
}

// containsWord 报告 text 中是否以整词形式出现 keyword
func containsWord(text, keyword string) bool {
	if strings.TrimSpace(keyword) == "" {
		return false
	}
	return compileWordPattern(keyword).MatchString(text)
}
