package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-analyzer/internal/config"
	"resume-analyzer/internal/constants"
	applog "resume-analyzer/internal/logger"
	"resume-analyzer/internal/storage/models"
	"resume-analyzer/internal/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("resume-analyzer/storage/mysql")

// spanContextKey GORM 回调之间传递 span 的上下文键
type spanContextKey struct{}

// GormTracingPlugin 是一个GORM插件，用于向OpenTelemetry中添加数据库操作的追踪点
type GormTracingPlugin struct {
	tracer         trace.Tracer
	dbName         string
	disableErrSkip bool
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("INSERT")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after())
}

// before 返回在GORM操作之前执行的回调函数
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if p.disableErrSkip && db.Statement.SkipHooks {
			return
		}

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}
		if sqlStatement := db.Statement.SQL.String(); sqlStatement != "" {
			opts = append(opts, trace.WithAttributes(
				attribute.String("db.statement", tracing.SafeSQL(sqlStatement)),
			))
		}

		newCtx, span := p.tracer.Start(ctx, fmt.Sprintf("%s %s", operation, tableName), opts...)
		db.Statement.Context = context.WithValue(newCtx, spanContextKey{}, span)
	}
}

// after 返回在GORM操作之后执行的回调函数
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(spanContextKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", max(db.Statement.RowsAffected, 0)))

		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			// 未找到记录属于正常业务结果
			span.SetAttributes(attribute.String("error.type", "record_not_found"))
			span.SetStatus(codes.Ok, "record not found")
		default:
			tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
		}
	}
}

// NewGormTracingPlugin 创建一个新的GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer:         mysqlTracer,
		dbName:         dbName,
		disableErrSkip: true,
	}
}

// FieldCount 职业方向分布中的一项
type FieldCount struct {
	Field string `json:"field"`
	Count int64  `json:"count"`
}

// LevelCount 候选人级别分布中的一项
type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

// ScoreBucket 分数直方图的一个区间 [Lower, Lower+ScoreBucketWidth)
type ScoreBucket struct {
	Lower int   `gorm:"column:score_lower" json:"lower"`
	Count int64 `json:"count"`
}

// MySQL 提供分析记录的持久化
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig

	// 每次分析追加一条记录，写入串行化
	writeMu sync.Mutex
}

// NewMySQL 创建MySQL客户端
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	m := NewMySQLWithDB(db, cfg)
	if err := m.AutoMigrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	applog.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("成功连接到MySQL并完成表结构迁移")
	return m, nil
}

// NewMySQLWithDB 使用已有的 GORM 连接构造，不做迁移
func NewMySQLWithDB(db *gorm.DB, cfg *config.MySQLConfig) *MySQL {
	if cfg == nil {
		cfg = &config.MySQLConfig{}
	}
	return &MySQL{db: db, cfg: cfg}
}

func gormLogLevel(level int) logger.LogLevel {
	switch level {
	case 1:
		return logger.Silent
	case 2:
		return logger.Error
	case 3:
		return logger.Warn
	default:
		return logger.Info
	}
}

// AutoMigrate 迁移分析记录表和发件箱表
func (m *MySQL) AutoMigrate() error {
	silentDB := m.db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})
	if err := silentDB.AutoMigrate(&models.AnalysisRecord{}, &models.OutboxMessage{}); err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// InsertAnalysisRecord 在同一事务中写入分析记录和发件箱消息，outbox 可以为 nil
func (m *MySQL) InsertAnalysisRecord(ctx context.Context, record *models.AnalysisRecord, outbox *models.OutboxMessage) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.InsertAnalysisRecord", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.name", m.cfg.Database),
		attribute.String("db.sql.table", record.TableName()),
		attribute.String("submission_uuid", record.SubmissionUUID),
		attribute.Bool("outbox", outbox != nil),
	)

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("写入分析记录失败: %w", err)
		}
		if outbox == nil {
			return nil
		}
		if err := tx.Create(outbox).Error; err != nil {
			return fmt.Errorf("写入发件箱消息失败: %w", err)
		}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return err
	}
	span.SetAttributes(attribute.Int64("record.id", int64(record.ID)))
	return nil
}

// ListAnalysisRecords 按时间倒序分页返回分析记录，同时返回总数
func (m *MySQL) ListAnalysisRecords(ctx context.Context, limit, offset int) ([]models.AnalysisRecord, int64, error) {
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	limit = min(limit, constants.MaxPageSize)
	offset = max(offset, 0)

	var total int64
	if err := m.db.WithContext(ctx).Model(&models.AnalysisRecord{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计分析记录失败: %w", err)
	}

	records := []models.AnalysisRecord{}
	err := m.db.WithContext(ctx).
		Order("timestamp desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询分析记录失败: %w", err)
	}
	return records, total, nil
}

// FieldDistribution 按职业方向统计记录数，未分类的记录以空字符串计
func (m *MySQL) FieldDistribution(ctx context.Context) ([]FieldCount, error) {
	result := []FieldCount{}
	err := m.db.WithContext(ctx).
		Model(&models.AnalysisRecord{}).
		Select("predicted_field AS field, COUNT(*) AS count").
		Group("predicted_field").
		Order("count desc").
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("统计职业方向分布失败: %w", err)
	}
	return result, nil
}

// LevelDistribution 按候选人级别统计记录数
func (m *MySQL) LevelDistribution(ctx context.Context) ([]LevelCount, error) {
	result := []LevelCount{}
	err := m.db.WithContext(ctx).
		Model(&models.AnalysisRecord{}).
		Select("user_level AS level, COUNT(*) AS count").
		Group("user_level").
		Order("count desc").
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("统计候选人级别分布失败: %w", err)
	}
	return result, nil
}

// ScoreHistogram 按固定宽度区间统计分数分布
func (m *MySQL) ScoreHistogram(ctx context.Context) ([]ScoreBucket, error) {
	result := []ScoreBucket{}
	width := constants.ScoreBucketWidth
	err := m.db.WithContext(ctx).
		Model(&models.AnalysisRecord{}).
		Select("FLOOR(resume_score / ?) * ? AS score_lower, COUNT(*) AS count", width, width).
		Group("score_lower").
		Order("score_lower asc").
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("统计分数分布失败: %w", err)
	}
	return result, nil
}
