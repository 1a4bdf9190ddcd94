package constants

import "time"

const (
	// ServiceName 服务名，用于日志和追踪
	ServiceName = "resume-analyzer"

	// DefaultReportCacheTTL 分析报告缓存的默认有效期
	DefaultReportCacheTTL = 24 * time.Hour

	// EventTypeResumeAnalyzed 简历分析完成事件
	EventTypeResumeAnalyzed = "resume.analyzed"

	// ResumeObjectPrefix 原始简历在对象存储中的路径前缀
	ResumeObjectPrefix = "resumes/"

	// DefaultPageSize 管理接口分页默认大小
	DefaultPageSize = 20
	// MaxPageSize 管理接口分页上限
	MaxPageSize = 200

	// ScoreBucketWidth 分数分布直方图的区间宽度
	ScoreBucketWidth = 10
)
