package storage

import (
	"context"
	"fmt"
	"strings"

	"resume-analyzer/internal/config"
	"resume-analyzer/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 原始简历归档
	MinIO *MinIO

	// 分析事件发布
	RabbitMQ *RabbitMQ

	// 分析日志和 outbox
	MySQL *MySQL

	// 报告缓存
	Redis *Redis
}

// NewStorage 创建存储管理器
// 只有 MySQL 是必需的，其余组件未配置或初始化失败时记录警告并跳过
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	log := logger.Component("storage")

	s := &Storage{}
	var err error
	var initErrors []string

	s.MySQL, err = NewMySQL(&cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("初始化MySQL失败: %w", err)
	}

	if cfg.Redis.Address != "" {
		s.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		}
	} else {
		log.Info().Msg("Redis未配置, 报告缓存关闭")
	}

	if cfg.MinIO.Endpoint != "" {
		s.MinIO, err = NewMinIO(&cfg.MinIO)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		}
	} else {
		log.Info().Msg("MinIO未配置, 原始简历不归档")
	}

	if cfg.RabbitMQ.URL != "" {
		s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		}
	} else {
		log.Info().Msg("RabbitMQ未配置, 分析事件仅保存在outbox")
	}

	if len(initErrors) > 0 {
		log.Warn().Str("errors", strings.Join(initErrors, "; ")).Msg("部分存储组件初始化失败")
	}

	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	log := logger.Component("storage")
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			log.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			log.Error().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
	// MinIO 客户端无需显式关闭
}
