package analyzer

import (
	"resume-analyzer/internal/catalog"
	"resume-analyzer/internal/types"
)

// ResolveRecommendations 查找职业方向对应的补充技能和课程
// 方向为空或不在推荐表中时返回两个空列表，不返回 nil
func ResolveRecommendations(field string, table catalog.RecommendationTable) ([]string, []types.Course) {
	skills := []string{}
	courses := []types.Course{}
	if field == "" {
		return skills, courses
	}
	rec, ok := table[field]
	if !ok {
		return skills, courses
	}
	// 复制一份，调用方修改报告不会影响目录
	skills = append(skills, rec.Skills...)
	courses = append(courses, rec.Courses...)
	return skills, courses
}

// CandidateLevelFor 根据页数判断候选人级别，规则固定不可配置
func CandidateLevelFor(pageCount int) types.CandidateLevel {
	switch {
	case pageCount <= 1:
		return types.LevelFresher
	case pageCount == 2:
		return types.LevelIntermediate
	default:
		return types.LevelExperienced
	}
}
