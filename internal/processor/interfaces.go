package processor

import (
	"context"
	"io"
	"time"

	"resume-analyzer/internal/storage"
	"resume-analyzer/internal/storage/models"
	"resume-analyzer/internal/types"
)

// ResumeAnalyzer 简历分析接口，由 analyzer.Analyzer 实现
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, doc types.ResumeDocument) (*types.AnalysisReport, error)
}

// ReportCache 按文档MD5缓存分析报告，由 storage.Redis 实现
type ReportCache interface {
	// GetCachedReport 未命中时返回 (nil, nil)
	GetCachedReport(ctx context.Context, key string) (*storage.CachedReport, error)
	SetCachedReport(ctx context.Context, key string, cached *storage.CachedReport, ttl time.Duration) error
}

// RecordStore 分析记录持久化，由 storage.MySQL 实现
type RecordStore interface {
	InsertAnalysisRecord(ctx context.Context, record *models.AnalysisRecord, outbox *models.OutboxMessage) error
}

// ObjectArchive 原始简历归档，由 storage.MinIO 实现
type ObjectArchive interface {
	UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error)
}

var (
	_ ReportCache   = (*storage.Redis)(nil)
	_ RecordStore   = (*storage.MySQL)(nil)
	_ ObjectArchive = (*storage.MinIO)(nil)
)

// Upload 一次上传的简历
type Upload struct {
	FileName string
	Data     []byte
}

// ProcessResult 处理结果
type ProcessResult struct {
	SubmissionUUID string                `json:"submission_uuid"`
	DocumentMD5    string                `json:"document_md5"`
	Cached         bool                  `json:"cached"`
	Report         *types.AnalysisReport `json:"report"`
}
