package processor

import (
	"time"

	"github.com/rs/zerolog"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// Components 聚合处理流程依赖的组件，Cache 和 Archive 可以为空
type Components struct {
	Analyzer ResumeAnalyzer
	Store    RecordStore
	Cache    ReportCache
	Archive  ObjectArchive
}

// Settings 纯配置项
type Settings struct {
	// 报告缓存有效期，<=0 时不读也不写缓存
	CacheTTL time.Duration
	// 缓存键前缀，通常是目录指纹，目录变化后旧报告不再命中
	CacheNamespace string

	// 分析完成事件的目标，Exchange 为空时不写 outbox
	EventExchange   string
	EventRoutingKey string

	Logger *zerolog.Logger

	// 生成记录时间戳，测试中替换
	Now func() time.Time
}

// ----- 组件选项 -----

// WithAnalyzer 设置简历分析器
func WithAnalyzer(a ResumeAnalyzer) ComponentOpt {
	return func(c *Components) {
		c.Analyzer = a
	}
}

// WithRecordStore 设置分析记录存储
func WithRecordStore(s RecordStore) ComponentOpt {
	return func(c *Components) {
		c.Store = s
	}
}

// WithReportCache 设置报告缓存
func WithReportCache(rc ReportCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = rc
	}
}

// WithObjectArchive 设置原始简历归档
func WithObjectArchive(a ObjectArchive) ComponentOpt {
	return func(c *Components) {
		c.Archive = a
	}
}

// ----- 设置选项 -----

// WithCacheTTL 设置报告缓存有效期
func WithCacheTTL(ttl time.Duration) SettingOpt {
	return func(s *Settings) {
		s.CacheTTL = ttl
	}
}

// WithCacheNamespace 设置缓存键前缀
func WithCacheNamespace(ns string) SettingOpt {
	return func(s *Settings) {
		s.CacheNamespace = ns
	}
}

// WithEventTarget 设置分析完成事件发布的 exchange 和路由键
func WithEventTarget(exchange, routingKey string) SettingOpt {
	return func(s *Settings) {
		s.EventExchange = exchange
		s.EventRoutingKey = routingKey
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// WithClock 设置时间来源
func WithClock(now func() time.Time) SettingOpt {
	return func(s *Settings) {
		if now != nil {
			s.Now = now
		}
	}
}
