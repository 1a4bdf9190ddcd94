package analyzer

import (
	"sort"

	"resume-analyzer/internal/catalog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SkillMatcher 在文本中查找分类表中的技能关键词
// 构造后只读，可被多个 goroutine 共享
type SkillMatcher struct {
	patterns []keywordPattern
}

// NewSkillMatcher 以所有职业方向技能关键词的并集构造匹配器
func NewSkillMatcher(taxonomy catalog.Taxonomy) *SkillMatcher {
	return &SkillMatcher{patterns: compileKeywords(taxonomy.Keywords())}
}

// Match 返回文本中出现的技能（首字母大写，去重，按字典序）
// 每个关键词最多计一次，"java" 不会匹配 "javascript"
func (m *SkillMatcher) Match(text string) []string {
	// Caser 有内部状态，不能跨 goroutine 共享
	caser := cases.Title(language.English)

	seen := make(map[string]struct{})
	skills := []string{}
	for _, p := range m.patterns {
		if !p.re.MatchString(text) {
			continue
		}
		label := caser.String(p.keyword)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		skills = append(skills, label)
	}
	sort.Strings(skills)
	return skills
}
