package router

import (
	"context"

	"resume-analyzer/internal/api/handler"
	"resume-analyzer/pkg/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RegisterRoutes 注册 API 路由，analyzeLimiter 为空时分析接口不限流
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, adminHandler *handler.AdminHandler, adminKeys []string, analyzeLimiter *ratelimit.TokenBucket) {
	h.Use(RequestID())

	api := h.Group("/api/v1")

	analyzeChain := []app.HandlerFunc{resumeHandler.HandleAnalyze}
	if analyzeLimiter != nil {
		analyzeChain = append([]app.HandlerFunc{RateLimit(analyzeLimiter)}, analyzeChain...)
	}
	api.POST("/resume/analyze", analyzeChain...)

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	// adminHandler 为空时 (没有数据库) 不注册管理接口
	if adminHandler != nil {
		admin := api.Group("/admin", AdminAuth(adminKeys))
		admin.GET("/records", adminHandler.HandleListRecords)
		admin.GET("/stats", adminHandler.HandleStats)
	}
}
