// Package processor 编排一次简历上传的完整处理流程：
// 缓存查询、分析、归档、持久化 (含 outbox 事件) 和回写缓存。
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-analyzer/internal/constants"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/storage"
	"resume-analyzer/internal/storage/models"
	"resume-analyzer/internal/tracing"
	"resume-analyzer/internal/types"
	"resume-analyzer/pkg/utils"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("resume-analyzer/processor")

// ResumeProcessor 简历处理器
type ResumeProcessor struct {
	comp Components
	set  Settings
}

// NewResumeProcessor 创建处理器，Analyzer 和 Store 是必需的
func NewResumeProcessor(compOpts []ComponentOpt, setOpts ...SettingOpt) (*ResumeProcessor, error) {
	var comp Components
	for _, opt := range compOpts {
		opt(&comp)
	}
	set := Settings{
		CacheTTL: constants.DefaultReportCacheTTL,
		Now:      time.Now,
	}
	for _, opt := range setOpts {
		opt(&set)
	}
	if set.Logger == nil {
		l := logger.Component("processor")
		set.Logger = &l
	}

	rp := &ResumeProcessor{comp: comp, set: set}
	if err := rp.CheckComponentsInitialized(); err != nil {
		return nil, err
	}
	return rp, nil
}

// CheckComponentsInitialized 检查必要组件
func (rp *ResumeProcessor) CheckComponentsInitialized() error {
	if rp.comp.Analyzer == nil {
		return fmt.Errorf("%w: analyzer", ErrMissingComponent)
	}
	if rp.comp.Store == nil {
		return fmt.Errorf("%w: record store", ErrMissingComponent)
	}
	return nil
}

// Process 处理一次上传
//
// 相同内容的文档命中缓存时直接返回首次分析的结果，不再追加记录。
// 分析错误原样返回；归档和缓存失败只记录日志；持久化失败返回 ErrPersistFailed。
func (rp *ResumeProcessor) Process(ctx context.Context, upload Upload) (*ProcessResult, error) {
	if len(upload.Data) == 0 {
		return nil, ErrEmptyUpload
	}

	md5Hex := utils.CalculateMD5(upload.Data)
	ctx, span := tracer.Start(ctx, "ResumeProcessor.Process", trace.WithAttributes(
		attribute.String("resume.file_name", tracing.SafeFileName(upload.FileName)),
		attribute.Int("resume.size", len(upload.Data)),
		attribute.String("resume.md5", md5Hex),
	))
	defer span.End()

	log := rp.set.Logger.With().Str("md5", md5Hex).Logger()

	cacheKey := rp.cacheKey(md5Hex)
	if cached := rp.lookupCache(ctx, cacheKey, &log); cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &ProcessResult{
			SubmissionUUID: cached.SubmissionUUID,
			DocumentMD5:    md5Hex,
			Cached:         true,
			Report:         cached.Report,
		}, nil
	}

	report, err := rp.comp.Analyzer.Analyze(ctx, types.ResumeDocument{Name: upload.FileName, Data: upload.Data})
	if err != nil {
		errType := tracing.ErrorTypeDocument
		if errors.Is(err, context.DeadlineExceeded) {
			errType = tracing.ErrorTypeTimeout
		}
		tracing.RecordError(span, err, errType)
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成提交UUID失败: %w", err)
	}
	submissionUUID := id.String()
	span.SetAttributes(attribute.String("submission_uuid", submissionUUID))
	log = log.With().Str("submission_uuid", submissionUUID).Logger()

	objectKey := rp.archive(ctx, submissionUUID, upload, &log)

	now := rp.set.Now()
	if err := rp.persist(ctx, submissionUUID, md5Hex, objectKey, upload.FileName, report, now); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, err
	}

	rp.storeCache(ctx, cacheKey, &storage.CachedReport{
		SubmissionUUID: submissionUUID,
		Report:         report,
		CachedAt:       now,
	}, &log)

	log.Info().
		Str("name", tracing.MaskPII(report.Profile.Name)).
		Str("field", report.Field).
		Str("level", string(report.CandidateLevel)).
		Int("score", report.Score).
		Strs("warnings", report.Warnings()).
		Msg("简历分析完成")

	return &ProcessResult{
		SubmissionUUID: submissionUUID,
		DocumentMD5:    md5Hex,
		Report:         report,
	}, nil
}

func (rp *ResumeProcessor) cacheEnabled() bool {
	return rp.comp.Cache != nil && rp.set.CacheTTL > 0
}

// cacheKey 目录指纹 + 文档MD5
func (rp *ResumeProcessor) cacheKey(md5Hex string) string {
	if rp.set.CacheNamespace == "" {
		return md5Hex
	}
	return rp.set.CacheNamespace + ":" + md5Hex
}

func (rp *ResumeProcessor) lookupCache(ctx context.Context, key string, log *zerolog.Logger) *storage.CachedReport {
	if !rp.cacheEnabled() {
		return nil
	}
	cached, err := rp.comp.Cache.GetCachedReport(ctx, key)
	if err != nil {
		log.Warn().Err(NewCacheError("", err.Error())).Msg("读取报告缓存失败，继续分析")
		return nil
	}
	if cached == nil || cached.Report == nil {
		return nil
	}
	log.Debug().Str("submission_uuid", cached.SubmissionUUID).Msg("命中报告缓存")
	return cached
}

func (rp *ResumeProcessor) storeCache(ctx context.Context, key string, cached *storage.CachedReport, log *zerolog.Logger) {
	if !rp.cacheEnabled() {
		return
	}
	if err := rp.comp.Cache.SetCachedReport(ctx, key, cached, rp.set.CacheTTL); err != nil {
		log.Warn().Err(NewCacheError(cached.SubmissionUUID, err.Error())).Msg("写入报告缓存失败")
	}
}

// archive 归档原始文件，失败时返回空对象键
func (rp *ResumeProcessor) archive(ctx context.Context, submissionUUID string, upload Upload, log *zerolog.Logger) string {
	if rp.comp.Archive == nil {
		return ""
	}
	key, err := rp.comp.Archive.UploadResumeFile(ctx, submissionUUID, utils.FileExt(upload.FileName),
		bytes.NewReader(upload.Data), int64(len(upload.Data)))
	if err != nil {
		log.Warn().Err(NewArchiveError(submissionUUID, err.Error())).Msg("归档原始简历失败")
		return ""
	}
	return key
}

func (rp *ResumeProcessor) persist(ctx context.Context, submissionUUID, md5Hex, objectKey, fileName string, report *types.AnalysisReport, at time.Time) error {
	record, err := models.NewAnalysisRecord(submissionUUID, report, at)
	if err != nil {
		return NewPersistError(submissionUUID, err.Error())
	}
	record.DocumentMD5 = md5Hex
	record.OriginalObjectKey = objectKey

	var outbox *models.OutboxMessage
	if rp.set.EventExchange != "" {
		evt := storage.NewResumeAnalyzedEvent(submissionUUID, md5Hex, fileName, objectKey, report, at)
		payload, err := json.Marshal(evt)
		if err != nil {
			return NewPersistError(submissionUUID, fmt.Sprintf("序列化分析事件失败: %v", err))
		}
		outbox = &models.OutboxMessage{
			AggregateID:      submissionUUID,
			EventType:        constants.EventTypeResumeAnalyzed,
			Payload:          string(payload),
			TargetExchange:   rp.set.EventExchange,
			TargetRoutingKey: rp.set.EventRoutingKey,
			Status:           models.OutboxStatusPending,
		}
	}

	if err := rp.comp.Store.InsertAnalysisRecord(ctx, record, outbox); err != nil {
		return NewPersistError(submissionUUID, err.Error())
	}
	return nil
}
