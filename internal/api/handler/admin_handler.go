package handler

import (
	"context"
	"strconv"

	"resume-analyzer/internal/constants"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/storage"
	"resume-analyzer/internal/storage/models"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RecordQuerier 分析记录查询接口，由 storage.MySQL 实现
type RecordQuerier interface {
	ListAnalysisRecords(ctx context.Context, limit, offset int) ([]models.AnalysisRecord, int64, error)
	FieldDistribution(ctx context.Context) ([]storage.FieldCount, error)
	LevelDistribution(ctx context.Context) ([]storage.LevelCount, error)
	ScoreHistogram(ctx context.Context) ([]storage.ScoreBucket, error)
}

var _ RecordQuerier = (*storage.MySQL)(nil)

// AdminHandler 管理接口：分析记录列表和统计
type AdminHandler struct {
	records RecordQuerier
}

// NewAdminHandler 创建管理接口处理器
func NewAdminHandler(records RecordQuerier) *AdminHandler {
	return &AdminHandler{records: records}
}

// RecordListResponse 分析记录分页响应
type RecordListResponse struct {
	Total   int64                   `json:"total"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
	Records []models.AnalysisRecord `json:"records"`
}

// StatsResponse 统计响应
type StatsResponse struct {
	Fields      []storage.FieldCount  `json:"fields"`
	Levels      []storage.LevelCount  `json:"levels"`
	Scores      []storage.ScoreBucket `json:"scores"`
	BucketWidth int                   `json:"bucket_width"`
}

// HandleListRecords 按时间倒序分页列出分析记录
func (h *AdminHandler) HandleListRecords(ctx context.Context, c *app.RequestContext) {
	limit := queryInt(c, "limit", constants.DefaultPageSize)
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	records, total, err := h.records.ListAnalysisRecords(ctx, limit, offset)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("查询分析记录失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "查询分析记录失败"})
		return
	}
	if records == nil {
		records = []models.AnalysisRecord{}
	}

	c.JSON(consts.StatusOK, RecordListResponse{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Records: records,
	})
}

// HandleStats 返回职业方向分布、候选人级别分布和分数直方图
func (h *AdminHandler) HandleStats(ctx context.Context, c *app.RequestContext) {
	fields, err := h.records.FieldDistribution(ctx)
	if err != nil {
		h.statsError(ctx, c, err)
		return
	}
	levels, err := h.records.LevelDistribution(ctx)
	if err != nil {
		h.statsError(ctx, c, err)
		return
	}
	scores, err := h.records.ScoreHistogram(ctx)
	if err != nil {
		h.statsError(ctx, c, err)
		return
	}

	c.JSON(consts.StatusOK, StatsResponse{
		Fields:      fields,
		Levels:      levels,
		Scores:      scores,
		BucketWidth: constants.ScoreBucketWidth,
	})
}

func (h *AdminHandler) statsError(ctx context.Context, c *app.RequestContext, err error) {
	logger.Ctx(ctx).Error().Err(err).Msg("查询统计数据失败")
	c.JSON(consts.StatusInternalServerError, utils.H{"error": "查询统计数据失败"})
}

// 非法值时返回默认值
func queryInt(c *app.RequestContext, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
