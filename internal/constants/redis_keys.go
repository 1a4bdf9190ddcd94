package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "resume"

	// AnalysisModulePrefix 分析模块
	AnalysisModulePrefix = "analysis"

	// EntityReport 分析报告实体
	EntityReport = "report"

	// KeyAnalysisReport 按目录指纹和文档MD5缓存的分析报告 (STRING, JSON)
	// 格式: resume:analysis:report:{catalog}:{md5}
	KeyAnalysisReport = AppPrefix + ":" + AnalysisModulePrefix + ":" + EntityReport + ":%s"
)
