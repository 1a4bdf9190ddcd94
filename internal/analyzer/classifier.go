package analyzer

import (
	"strings"

	"resume-analyzer/internal/catalog"
)

// ClassifyField 按分类表的声明顺序，返回第一个与技能集合有交集的职业方向
// 候选人同时匹配多个方向时，先声明的方向胜出；没有任何交集时返回空字符串
func ClassifyField(skills []string, taxonomy catalog.Taxonomy) string {
	if len(skills) == 0 {
		return ""
	}
	found := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		found[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, fs := range taxonomy {
		for _, kw := range fs.Skills {
			if _, ok := found[strings.ToLower(kw)]; ok {
				return fs.Field
			}
		}
	}
	return ""
}
