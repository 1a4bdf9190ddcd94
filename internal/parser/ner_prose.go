package parser

import (
	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/logger"

	"github.com/jdkato/prose/v2"
	"github.com/rs/zerolog"
)

// ProseNameRecognizer 基于 prose 内置英文模型的命名实体识别
// prose 的标签集中人名为 PERSON，与 analyzer.LabelPerson 一致
type ProseNameRecognizer struct {
	logger zerolog.Logger
}

// NewProseNameRecognizer 创建识别器
func NewProseNameRecognizer() *ProseNameRecognizer {
	return &ProseNameRecognizer{logger: logger.Component("ner")}
}

// Entities 返回文本中的命名实体，识别失败时返回 nil
func (r *ProseNameRecognizer) Entities(text string) []analyzer.Entity {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		r.logger.Warn().Err(err).Msg("命名实体识别失败")
		return nil
	}

	ents := doc.Entities()
	result := make([]analyzer.Entity, 0, len(ents))
	for _, ent := range ents {
		result = append(result, analyzer.Entity{Text: ent.Text, Label: ent.Label})
	}
	return result
}
