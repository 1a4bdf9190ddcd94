package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/catalog"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/parser"
	"resume-analyzer/internal/types"
)

func newExtractor(ctx context.Context) (*parser.EinoPDFTextExtractor, error) {
	opts := []parser.EinoPDFOption{parser.WithEinoLogger(logger.Component("pdf-extractor"))}
	if *timeout > 0 {
		opts = append(opts, parser.WithExtractionTimeout(*timeout))
	}
	return parser.NewEinoPDFTextExtractor(ctx, opts...)
}

func loadCatalog() (*catalog.Catalog, error) {
	if *catalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(*catalogPath)
}

func newAnalyzer(ctx context.Context) (*analyzer.Analyzer, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	extractor, err := newExtractor(ctx)
	if err != nil {
		return nil, fmt.Errorf("创建PDF提取器失败: %w", err)
	}
	opts := []analyzer.Option{analyzer.WithTextExtractor(extractor)}
	if !*noNER {
		opts = append(opts, analyzer.WithEntityRecognizer(parser.NewProseNameRecognizer()))
	}
	return analyzer.New(cat, opts...), nil
}

// 处理分析命令，输出JSON报告
func handleAnalyzeCommand(ctx context.Context, path string) error {
	a, err := newAnalyzer(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}
	report, err := a.Analyze(ctx, types.ResumeDocument{Name: filepath.Base(path), Data: data})
	if err != nil {
		return err
	}
	if w := report.Warnings(); len(w) > 0 {
		logger.Warn().Strs("warnings", w).Msg("部分信息未识别")
	}
	return writeJSON(report)
}

// 处理提取文本命令
func handleExtractCommand(ctx context.Context, path string) error {
	extractor, err := newExtractor(ctx)
	if err != nil {
		return fmt.Errorf("创建PDF提取器失败: %w", err)
	}
	extracted, err := extractor.ExtractFromFile(ctx, path)
	if err != nil {
		return err
	}

	text := []rune(extracted.Text)
	fmt.Printf("===== 提取的文本 (共 %d 页, %d 字符) =====\n", extracted.PageCount, len(text))
	if *maxLen >= 0 && len(text) > *maxLen {
		fmt.Println(string(text[:*maxLen]))
		fmt.Printf("... (还有 %d 个字符未显示)\n", len(text)-*maxLen)
		return nil
	}
	fmt.Println(string(text))
	return nil
}

// 处理评分命令，输出命中的评分项
func handleScoreCommand(ctx context.Context, path string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	extractor, err := newExtractor(ctx)
	if err != nil {
		return err
	}
	extracted, err := extractor.ExtractFromFile(ctx, path)
	if err != nil {
		return err
	}
	return writeJSON(analyzer.New(cat).ScoreDetail(extracted.Text))
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
