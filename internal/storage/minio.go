package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"resume-analyzer/internal/config"
	"resume-analyzer/internal/constants"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/tracing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var minioTracer = otel.Tracer("resume-analyzer/storage/minio")

// MinIO 原始简历归档
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	logger         zerolog.Logger
}

// NewMinIO 创建MinIO客户端，并确保原始简历存储桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	log := logger.Component("minio")
	log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.OriginalsBucket).Msg("初始化MinIO客户端")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: cfg.OriginalsBucket,
		logger:         log,
	}

	ctx := context.Background()
	if err := m.ensureBucketExists(ctx, m.originalBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保原始简历存储桶 %s 存在失败: %w", m.originalBucket, err)
	}

	if cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalBucket, "expire-originals", cfg.OriginalFileExpireDays); err != nil {
			// 生命周期规则失败不影响归档
			log.Warn().Err(err).Str("bucket", m.originalBucket).Msg("设置生命周期规则失败")
		}
	}

	return m, nil
}

func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		m.logger.Debug().Str("bucket", bucketName).Msg("存储桶已存在")
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	m.logger.Info().Str("bucket", bucketName).Msg("存储桶已创建")
	return nil
}

func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	if err := m.client.SetBucketLifecycle(ctx, bucketName, cfg); err != nil {
		return err
	}
	m.logger.Info().Str("bucket", bucketName).Int("expire_days", expiryDays).Msg("生命周期规则已设置")
	return nil
}

// UploadResumeFile 上传原始简历，返回对象键 (不含bucket)
func (m *MinIO) UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	objectName := ResumeObjectKey(submissionUUID, fileExt)

	ctx, span := minioTracer.Start(ctx, "MinIO.UploadResumeFile", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("object_storage.bucket", m.originalBucket),
		attribute.String("object_storage.key", tracing.SafeFileName(objectName)),
		attribute.Int64("object_storage.size", fileSize),
	)

	info, err := m.client.PutObject(ctx, m.originalBucket, objectName, reader, fileSize,
		minio.PutObjectOptions{ContentType: getContentType(fileExt)})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.originalBucket, objectName, err)
	}

	logger.Ctx(ctx).Debug().
		Str("object", objectName).
		Str("etag", info.ETag).
		Int64("size", info.Size).
		Msg("原始简历已归档")
	return objectName, nil
}

// ResumeObjectKey 原始简历的对象键，例如 resumes/<uuid>.pdf
func ResumeObjectKey(submissionUUID, fileExt string) string {
	ext := strings.ToLower(fileExt)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return constants.ResumeObjectPrefix + submissionUUID + ext
}

// 获取内容类型
func getContentType(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
