package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-analyzer/internal/config"
	"resume-analyzer/internal/constants"
	"resume-analyzer/internal/tracing"
	"resume-analyzer/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var redisTracer = otel.Tracer("resume-analyzer/storage/redis")

// CachedReport 缓存中的分析结果，附带首次分析时生成的提交UUID
type CachedReport struct {
	SubmissionUUID string                `json:"submission_uuid"`
	Report         *types.AnalysisReport `json:"report"`
	CachedAt       time.Time             `json:"cached_at"`
}

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
}

// NewRedisAdapter 创建 Redis 客户端并检查连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,
	})

	// 所有命令都由 redisotel 钩子记录 span
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// Get 获取键的值，键不存在时返回 redis.Nil
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}
	return r.Client.Get(ctx, key).Result()
}

// GetCachedReport 读取缓存的分析报告，未命中时返回 (nil, nil)
// reportKey 由调用方组合目录指纹和文档MD5
func (r *Redis) GetCachedReport(ctx context.Context, reportKey string) (*CachedReport, error) {
	key := fmt.Sprintf(constants.KeyAnalysisReport, reportKey)
	ctx, span := redisTracer.Start(ctx, "Redis.GetCachedReport", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	)

	val, err := r.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("读取报告缓存失败: %w", err)
	}

	var cached CachedReport
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// 格式损坏的缓存视为未命中
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return &cached, nil
}

// SetCachedReport 缓存分析报告，ttl<=0 时使用默认有效期
func (r *Redis) SetCachedReport(ctx context.Context, reportKey string, cached *CachedReport, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = constants.DefaultReportCacheTTL
	}
	key := fmt.Sprintf(constants.KeyAnalysisReport, reportKey)
	ctx, span := redisTracer.Start(ctx, "Redis.SetCachedReport", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		attribute.Int64("db.redis.expiration_ms", ttl.Milliseconds()),
	)

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("序列化报告缓存失败: %w", err)
	}

	if err := r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入报告缓存失败: %w", err)
	}
	return nil
}
