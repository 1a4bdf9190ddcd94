// Package outbox 实现分析事件的发件箱中继
package outbox

import (
	"context"
	"sync"
	"time"

	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/storage"
	"resume-analyzer/internal/storage/models"
	"resume-analyzer/internal/tracing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPollingInterval = 5 * time.Second // 默认轮询间隔
	defaultBatchSize       = 10              // 每次轮询处理的消息数
	maxRetryCount          = 5               // 发布失败的最大重试次数
)

// MessageRelay 轮询 outbox 表并将消息发布到 RabbitMQ
type MessageRelay struct {
	db              *gorm.DB
	publisher       storage.MessagePublisher
	logger          zerolog.Logger
	pollingInterval time.Duration
	batchSize       int
	done            chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
	tracer          trace.Tracer
}

// Option 配置 MessageRelay
type Option func(*MessageRelay)

// WithPollingInterval 设置轮询间隔，非正数忽略
func WithPollingInterval(d time.Duration) Option {
	return func(r *MessageRelay) {
		if d > 0 {
			r.pollingInterval = d
		}
	}
}

// WithBatchSize 设置批量大小，非正数忽略
func WithBatchSize(n int) Option {
	return func(r *MessageRelay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// NewMessageRelay 创建 MessageRelay
func NewMessageRelay(db *gorm.DB, publisher storage.MessagePublisher, opts ...Option) *MessageRelay {
	r := &MessageRelay{
		db:              db,
		publisher:       publisher,
		logger:          logger.Component("outbox-relay"),
		pollingInterval: defaultPollingInterval,
		batchSize:       defaultBatchSize,
		done:            make(chan struct{}),
		tracer:          otel.Tracer("resume-analyzer/outbox"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start 在后台开始轮询
func (r *MessageRelay) Start() {
	r.logger.Info().Dur("interval", r.pollingInterval).Msg("MessageRelay starting")
	ticker := time.NewTicker(r.pollingInterval)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-r.done:
				r.logger.Info().Msg("MessageRelay stopped")
				return
			case <-ticker.C:
				if err := r.processPendingMessages(context.Background()); err != nil {
					r.logger.Error().Err(err).Msg("处理待发布消息失败")
				}
			}
		}
	}()
}

// Stop 停止轮询，等待当前批次结束
func (r *MessageRelay) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}

// processPendingMessages 在一个事务中锁定并投递一批待发布消息
func (r *MessageRelay) processPendingMessages(ctx context.Context) error {
	var messages []models.OutboxMessage

	// 空轮询不创建 span
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	// SKIP LOCKED 让多个实例可以并行中继
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(attribute.Int("messaging.batch.message_count", len(messages))),
	)
	defer span.End()

	r.publishBatch(ctx, messages)

	for i := range messages {
		// 更新失败时整个事务回滚，消息在下一次轮询中重新拾取
		if err := tx.Save(&messages[i]).Error; err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return err
		}
	}
	return tx.Commit().Error
}

// publishBatch 逐条发布并就地更新消息状态
func (r *MessageRelay) publishBatch(ctx context.Context, messages []models.OutboxMessage) {
	for i := range messages {
		msg := &messages[i]
		err := r.publisher.PublishMessage(ctx, msg.TargetExchange, msg.TargetRoutingKey, []byte(msg.Payload), true)
		if err != nil {
			r.logger.Warn().Err(err).
				Uint64("id", msg.ID).
				Str("aggregate_id", msg.AggregateID).
				Int("retries", msg.RetryCount+1).
				Msg("发布outbox消息失败")
			trace.SpanFromContext(ctx).AddEvent("publish_failed", trace.WithAttributes(
				attribute.String("outbox.aggregate_id", msg.AggregateID),
			))
		}
		markResult(msg, err, time.Now())
	}
}

func markResult(msg *models.OutboxMessage, err error, now time.Time) {
	if err != nil {
		msg.RetryCount++
		msg.ErrorMessage = err.Error()
		if msg.RetryCount >= maxRetryCount {
			msg.Status = models.OutboxStatusFailed
		}
		return
	}
	msg.Status = models.OutboxStatusPublished
	msg.ProcessedAt = &now
	msg.ErrorMessage = ""
}
