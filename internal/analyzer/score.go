package analyzer

import (
	"strings"

	"resume-analyzer/internal/catalog"
)

// ScoreResult 评分结果
type ScoreResult struct {
	Score     int      `json:"score"`     // 截断到 MaxScore 之后的分数
	Raw       int      `json:"raw"`       // 截断前的加权和
	Satisfied []string `json:"satisfied"` // 计分的评分项，按声明顺序
}

// ScoreEngine 根据章节关键词计算简历完整度
type ScoreEngine struct {
	maxScore  int
	criteria  []scoredCriterion
	primaries map[string][]string // redundant -> primaries，键均为小写
}

type scoredCriterion struct {
	keyword string
	key     string
	weight  int
	pattern keywordPattern
}

// NewScoreEngine 编译评分规则，criteria 需已通过 Validate
func NewScoreEngine(criteria catalog.ScoreCriteria) *ScoreEngine {
	e := &ScoreEngine{
		maxScore:  criteria.MaxScore,
		primaries: make(map[string][]string, len(criteria.Couplings)),
	}
	if e.maxScore <= 0 {
		e.maxScore = catalog.DefaultMaxScore
	}
	for _, cr := range criteria.Criteria {
		e.criteria = append(e.criteria, scoredCriterion{
			keyword: cr.Keyword,
			key:     strings.ToLower(cr.Keyword),
			weight:  cr.Weight,
			pattern: keywordPattern{keyword: cr.Keyword, re: compileWordPattern(cr.Keyword)},
		})
	}
	for _, cp := range criteria.Couplings {
		r := strings.ToLower(cp.Redundant)
		e.primaries[r] = append(e.primaries[r], strings.ToLower(cp.Primary))
	}
	return e
}

// MaxScore 返回评分上限
func (e *ScoreEngine) MaxScore() int {
	return e.maxScore
}

// Score 计算文本得分
//
// 按声明顺序判定：某项出现且它的任一 primary 已经计分时，该项不计分。
func (e *ScoreEngine) Score(text string) ScoreResult {
	credited := make(map[string]bool, len(e.criteria))
	result := ScoreResult{Satisfied: []string{}}
	for _, c := range e.criteria {
		if !c.pattern.re.MatchString(text) {
			continue
		}
		if e.coveredByPrimary(c.key, credited) {
			continue
		}
		credited[c.key] = true
		result.Raw += c.weight
		result.Satisfied = append(result.Satisfied, c.keyword)
	}
	result.Score = min(result.Raw, e.maxScore)
	return result
}

func (e *ScoreEngine) coveredByPrimary(key string, credited map[string]bool) bool {
	for _, p := range e.primaries[key] {
		if credited[p] {
			return true
		}
	}
	return false
}
