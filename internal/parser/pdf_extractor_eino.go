package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/types"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

// DefaultExtractionTimeout 单个文档的默认解析超时
const DefaultExtractionTimeout = 30 * time.Second

// 页与页之间的分隔，保证跨页的关键词不会被拼接成一个词
const pageSeparator = "\n\n"

// EinoPDFTextExtractor 使用 Eino PDF Parser 按页提取文本
type EinoPDFTextExtractor struct {
	parser  einoParser.Parser
	logger  zerolog.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(l zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = l
	}
}

// WithExtractionTimeout 配置单个文档的解析超时，<=0 表示不限制
func WithExtractionTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.timeout = d
	}
}

// withParser 替换底层解析器，测试使用
func withParser(p einoParser.Parser) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.parser = p
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 按页面分割，每页一个 schema.Document，页数即文档数
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Eino PDF 解析器失败: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		logger:  logger.Component("pdf_extractor"),
		timeout: DefaultExtractionTimeout,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractFromFile 从PDF文件提取文本和页数
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (*types.ExtractedText, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("打开PDF文件失败 %s: %w", filePath, err)
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil {
		e.logger.Debug().Str("file", filePath).Float64("size_mb", float64(info.Size())/1024/1024).Msg("开始处理PDF文件")
	}
	return e.ExtractDocument(ctx, file, filePath)
}

// ExtractTextFromBytes 从字节数组提取文本和页数
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (*types.ExtractedText, error) {
	return e.ExtractDocument(ctx, bytes.NewReader(data), uri)
}

type parseOutcome struct {
	docs []*schema.Document
	err  error
}

// ExtractDocument 解析PDF，按页顺序拼接文本
// 文档结构无法解析时返回 analyzer.ErrUnreadableDocument；超时或取消时返回上下文错误
func (e *EinoPDFTextExtractor) ExtractDocument(ctx context.Context, reader io.Reader, uri string) (*types.ExtractedText, error) {
	startTime := time.Now()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	// 底层解析器不响应上下文，放到单独的 goroutine 中等待
	done := make(chan parseOutcome, 1)
	go func() {
		defer func() {
			// 损坏的PDF可能让底层库 panic
			if r := recover(); r != nil {
				done <- parseOutcome{err: fmt.Errorf("解析器异常: %v", r)}
			}
		}()
		docs, err := e.parser.Parse(ctx, reader,
			einoParser.WithURI(uri),
			einoParser.WithExtraMeta(map[string]any{"source_uri": uri}),
		)
		done <- parseOutcome{docs: docs, err: err}
	}()

	var out parseOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		e.logger.Warn().Str("uri", uri).Dur("elapsed", time.Since(startTime)).Msg("PDF解析超时")
		return nil, fmt.Errorf("PDF解析未完成 (URI:%s): %w", uri, ctx.Err())
	}

	duration := time.Since(startTime)
	if out.err != nil {
		if errors.Is(out.err, context.DeadlineExceeded) || errors.Is(out.err, context.Canceled) {
			return nil, fmt.Errorf("PDF解析未完成 (URI:%s): %w", uri, out.err)
		}
		e.logger.Warn().Err(out.err).Str("uri", uri).Dur("elapsed", duration).Msg("PDF解析失败")
		return nil, analyzer.NewUnreadableError(uri, "PDF解析失败", out.err)
	}
	if len(out.docs) == 0 {
		// 结构完整但没有页面的文档，按空文本处理
		e.logger.Warn().Str("uri", uri).Msg("PDF没有页面")
		return &types.ExtractedText{}, nil
	}

	pages := make([]string, 0, len(out.docs))
	for _, doc := range out.docs {
		if doc == nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, doc.Content)
	}
	text := strings.Join(pages, pageSeparator)

	e.logger.Debug().
		Str("uri", uri).
		Int("pages", len(pages)).
		Int("chars", len(text)).
		Dur("elapsed", duration).
		Msg("PDF提取完成")
	return &types.ExtractedText{Text: text, PageCount: len(pages)}, nil
}
