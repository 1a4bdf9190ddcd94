package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// 命令行参数定义
var (
	pdfFilePath = pflag.String("pdf", "", "PDF简历文件路径 (必填)")
	catalogPath = pflag.String("catalog", "", "分析目录文件，为空时使用内置目录")
	command     = pflag.String("cmd", "analyze", "执行的命令: analyze=输出JSON分析报告, extract=仅提取文本, score=评分明细")
	maxLen      = pflag.Int("maxlen", 1000, "extract 显示的文本最大长度，设为-1显示全部")
	noNER       = pflag.Bool("no-ner", false, "关闭姓名实体识别")
	timeout     = pflag.Duration("timeout", 0, "文本提取超时，0 使用默认值")
)

func main() {
	pflag.Parse()

	if *pdfFilePath == "" {
		fmt.Fprintln(os.Stderr, "错误: 必须提供PDF文件路径 (-pdf)")
		pflag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch *command {
	case "analyze":
		err = handleAnalyzeCommand(ctx, *pdfFilePath)
	case "extract":
		err = handleExtractCommand(ctx, *pdfFilePath)
	case "score":
		err = handleScoreCommand(ctx, *pdfFilePath)
	default:
		fmt.Fprintf(os.Stderr, "错误: 未知命令 '%s'。支持的命令: analyze, extract, score\n", *command)
		pflag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
