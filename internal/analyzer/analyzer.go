// Package analyzer 实现简历分析流水线：文本提取、实体识别、技能匹配、职业方向分类、
// 推荐查找和完整度评分。每个阶段都是只读的纯函数，同一个 Analyzer 可并发使用。
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"io"

	"resume-analyzer/internal/catalog"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/types"
)

// ErrNoExtractor 未配置文本提取器时调用 Analyze
var ErrNoExtractor = errors.New("未配置文本提取器")

// TextExtractor 将分页文档转换为纯文本和页数
// 文档结构无法解析时返回的错误应满足 errors.Is(err, ErrUnreadableDocument)
type TextExtractor interface {
	ExtractDocument(ctx context.Context, reader io.Reader, uri string) (*types.ExtractedText, error)
}

// Analyzer 简历分析器
type Analyzer struct {
	catalog    *catalog.Catalog
	extractor  TextExtractor
	recognizer EntityRecognizer
	skills     *SkillMatcher
	scorer     *ScoreEngine
}

// Option 分析器选项
type Option func(*Analyzer)

// WithTextExtractor 设置文本提取器
func WithTextExtractor(e TextExtractor) Option {
	return func(a *Analyzer) {
		a.extractor = e
	}
}

// WithEntityRecognizer 设置人名识别器，未设置时姓名始终为空
func WithEntityRecognizer(r EntityRecognizer) Option {
	return func(a *Analyzer) {
		a.recognizer = r
	}
}

// New 以给定目录构造分析器，cat 为 nil 时使用内置目录
func New(cat *catalog.Catalog, opts ...Option) *Analyzer {
	if cat == nil {
		cat = catalog.Default()
	}
	a := &Analyzer{
		catalog: cat,
		skills:  NewSkillMatcher(cat.Taxonomy),
		scorer:  NewScoreEngine(cat.Scoring),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Catalog 返回分析器使用的目录
func (a *Analyzer) Catalog() *catalog.Catalog {
	return a.catalog
}

// Analyze 分析一份简历文档
// 只有文档无法读取时返回错误；姓名、邮箱、电话或职业方向缺失时以空值体现在报告中
func (a *Analyzer) Analyze(ctx context.Context, doc types.ResumeDocument) (*types.AnalysisReport, error) {
	if a.extractor == nil {
		return nil, ErrNoExtractor
	}
	if len(doc.Data) == 0 {
		return nil, NewUnreadableError(doc.Name, "文档内容为空", nil)
	}

	extracted, err := a.extractor.ExtractDocument(ctx, bytes.NewReader(doc.Data), doc.Name)
	if err != nil {
		return nil, err
	}

	report := a.AnalyzeText(extracted.Text, extracted.PageCount)
	logger.Ctx(ctx).Debug().
		Str("document", doc.Name).
		Int("pages", report.Profile.PageCount).
		Int("skills", len(report.Profile.Skills)).
		Str("field", report.Field).
		Int("score", report.Score).
		Strs("warnings", report.Warnings()).
		Msg("简历分析完成")
	return report, nil
}

// AnalyzeText 对已提取的文本执行分析，不涉及文档解析
func (a *Analyzer) AnalyzeText(text string, pageCount int) *types.AnalysisReport {
	contact := ExtractEntities(text, a.recognizer)
	skills := a.skills.Match(text)
	field := ClassifyField(skills, a.catalog.Taxonomy)
	recSkills, recCourses := ResolveRecommendations(field, a.catalog.Recommendations)
	score := a.scorer.Score(text)

	return &types.AnalysisReport{
		Profile: types.ExtractedProfile{
			Name:      contact.Name,
			Email:     contact.Email,
			Phone:     contact.Phone,
			Skills:    skills,
			PageCount: pageCount,
		},
		CandidateLevel:     CandidateLevelFor(pageCount),
		Field:              field,
		RecommendedSkills:  recSkills,
		RecommendedCourses: recCourses,
		Score:              score.Score,
	}
}

// ScoreDetail 返回文本的评分明细
func (a *Analyzer) ScoreDetail(text string) ScoreResult {
	return a.scorer.Score(text)
}
