package analyzer

import (
	"strings"
	"testing"

	"resume-analyzer/internal/catalog"

	"github.com/stretchr/testify/assert"
)

func TestScoreCoupling(t *testing.T) {
	e := NewScoreEngine(catalog.Default().Scoring)

	both := e.Score("Hobbies\nchess\nInterests\nhiking")
	only := e.Score("Hobbies\nchess")
	assert.Equal(t, only.Score, both.Score, "Hobbies 与 Interests 同时出现只计一次")
	assert.Equal(t, 20, both.Score)
	assert.Equal(t, []string{"Hobbies"}, both.Satisfied)

	interests := e.Score("Interests: hiking")
	assert.Equal(t, 20, interests.Score, "Hobbies 缺失时 Interests 正常计分")
	assert.Equal(t, []string{"Interests"}, interests.Satisfied)
}

// 关联规则按声明顺序判定，先声明的项先计分
func TestScoreCouplingDeclaredOrder(t *testing.T) {
	e := NewScoreEngine(catalog.ScoreCriteria{
		MaxScore: 100,
		Criteria: []catalog.Criterion{
			{Keyword: "A", Weight: 10},
			{Keyword: "B", Weight: 10},
			{Keyword: "C", Weight: 10},
		},
		Couplings: []catalog.Coupling{
			{Primary: "A", Redundant: "B"},
			{Primary: "B", Redundant: "C"},
		},
	})

	r := e.Score("A B C")
	assert.Equal(t, []string{"A", "C"}, r.Satisfied, "B 被 A 覆盖后不计分，C 的 primary 未计分")
	assert.Equal(t, 20, r.Score)

	r = e.Score("B C")
	assert.Equal(t, []string{"B"}, r.Satisfied)
}

func TestScoreCap(t *testing.T) {
	e := NewScoreEngine(catalog.ScoreCriteria{
		MaxScore: 50,
		Criteria: []catalog.Criterion{
			{Keyword: "Objective", Weight: 20},
			{Keyword: "Projects", Weight: 20},
			{Keyword: "Achievements", Weight: 20},
		},
	})

	r := e.Score("Objective Projects Achievements")
	assert.Equal(t, 60, r.Raw)
	assert.Equal(t, 50, r.Score)
	assert.Equal(t, 50, e.MaxScore())

	repeated := strings.Repeat("Objective Projects Achievements\n", 1000)
	assert.Equal(t, 50, e.Score(repeated).Score, "重复出现不会超过上限")
}

func TestScoreMonotonic(t *testing.T) {
	e := NewScoreEngine(catalog.Default().Scoring)
	headings := []string{"Objective", "Declaration", "Hobbies", "Interests", "Achievements", "Projects"}

	text := ""
	prev := e.Score(text).Score
	assert.Zero(t, prev)
	for _, h := range headings {
		text += h + "\n"
		cur := e.Score(text).Score
		assert.GreaterOrEqual(t, cur, prev, "加入 %s 后分数不应下降", h)
		assert.LessOrEqual(t, cur, e.MaxScore())
		prev = cur
	}
	assert.Equal(t, 100, prev)
}

func TestScoreWholeWordCaseInsensitive(t *testing.T) {
	e := NewScoreEngine(catalog.Default().Scoring)

	assert.Equal(t, 20, e.Score("CAREER OBJECTIVE").Score)
	assert.Equal(t, 0, e.Score("Objectives were met").Score, "只匹配完整单词")
}
