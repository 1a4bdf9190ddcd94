package handler

import (
	"context"
	"errors"
	"io"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/processor"
	"resume-analyzer/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"
)

// ResumeProcessor 简历处理接口，由 processor.ResumeProcessor 实现
type ResumeProcessor interface {
	Process(ctx context.Context, upload processor.Upload) (*processor.ProcessResult, error)
}

// ResumeHandler 处理简历上传分析请求
type ResumeHandler struct {
	processor      ResumeProcessor
	maxUploadBytes int64
}

// NewResumeHandler 创建简历处理器，maxUploadBytes<=0 表示不限制
func NewResumeHandler(p ResumeProcessor, maxUploadBytes int64) *ResumeHandler {
	return &ResumeHandler{
		processor:      p,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleAnalyze 接收 multipart 表单中的 file 字段并返回分析结果
func (h *ResumeHandler) HandleAnalyze(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		c.JSON(consts.StatusRequestEntityTooLarge, utils.H{"error": "文件过大"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "读取文件失败"})
		return
	}

	result, err := h.processor.Process(ctx, processor.Upload{FileName: fileHeader.Filename, Data: data})
	if err != nil {
		status := statusForError(err)
		tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
		if status < consts.StatusInternalServerError {
			c.JSON(status, utils.H{"error": err.Error()})
			return
		}
		// 服务端错误只记日志，不把存储细节返回给客户端
		logger.Ctx(ctx).Error().Err(err).Str("file", tracing.SafeFileName(fileHeader.Filename)).Msg("简历分析失败")
		msg := "简历分析失败"
		if status == consts.StatusGatewayTimeout {
			msg = "简历解析超时"
		}
		c.JSON(status, utils.H{"error": msg})
		return
	}

	c.JSON(consts.StatusOK, result)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, processor.ErrEmptyUpload):
		return consts.StatusBadRequest
	case errors.Is(err, analyzer.ErrUnreadableDocument):
		return consts.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return consts.StatusGatewayTimeout
	default:
		return consts.StatusInternalServerError
	}
}
