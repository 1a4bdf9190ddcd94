package types

// CandidateLevel 表示根据简历页数推断的候选人级别
type CandidateLevel string

const (
	// LevelFresher 单页简历
	LevelFresher CandidateLevel = "Fresher"
	// LevelIntermediate 两页简历
	LevelIntermediate CandidateLevel = "Intermediate"
	// LevelExperienced 三页及以上
	LevelExperienced CandidateLevel = "Experienced"
)

// 分析结果中的提示项，空字段不是错误
const (
	WarningNoName  = "no_name"
	WarningNoEmail = "no_email"
	WarningNoPhone = "no_phone"
	WarningNoField = "no_field"
)

// ResumeDocument 上传的原始简历文档，创建后不再修改
type ResumeDocument struct {
	Name string // 调用方提供的文件名或路径，仅用于日志和元数据
	Data []byte // 原始PDF字节
}

// ExtractedText 文本提取结果
type ExtractedText struct {
	Text      string // 按页顺序拼接的纯文本
	PageCount int    // 页数
}

// Contact 从文本中识别出的联系信息，未识别的字段为空字符串
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Course 推荐课程
type Course struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// ExtractedProfile 单份简历的提取结果
type ExtractedProfile struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Skills    []string `json:"skills"` // 去重并按字典序排列
	PageCount int      `json:"page_count"`
}

// AnalysisReport 分析报告，返回后由调用方持有
type AnalysisReport struct {
	Profile            ExtractedProfile `json:"profile"`
	CandidateLevel     CandidateLevel   `json:"candidate_level"`
	Field              string           `json:"field"` // 为空表示没有匹配的职业方向
	RecommendedSkills  []string         `json:"recommended_skills"`
	RecommendedCourses []Course         `json:"recommended_courses"`
	Score              int              `json:"score"`
}

// Warnings 列出未能识别的信息，供日志和界面提示使用
func (r *AnalysisReport) Warnings() []string {
	var warnings []string
	if r.Profile.Name == "" {
		warnings = append(warnings, WarningNoName)
	}
	if r.Profile.Email == "" {
		warnings = append(warnings, WarningNoEmail)
	}
	if r.Profile.Phone == "" {
		warnings = append(warnings, WarningNoPhone)
	}
	if r.Field == "" {
		warnings = append(warnings, WarningNoField)
	}
	return warnings
}
