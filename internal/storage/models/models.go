package models

import (
	"encoding/json"
	"fmt"
	"time"

	"resume-analyzer/internal/types"

	"gorm.io/datatypes"
)

// AnalysisRecord 每次简历分析追加的一条日志记录，只插入不更新
type AnalysisRecord struct {
	ID                 uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionUUID     string         `gorm:"type:char(36);not null;uniqueIndex:idx_ud_submission_uuid" json:"submission_uuid"`
	Name               string         `gorm:"type:varchar(255)" json:"name"`
	Email              string         `gorm:"type:varchar(255)" json:"email"`
	Phone              string         `gorm:"type:varchar(50)" json:"phone"`
	ResumeScore        int            `gorm:"not null;default:0" json:"resume_score"`
	Timestamp          time.Time      `gorm:"type:datetime(6);not null;index:idx_ud_timestamp" json:"timestamp"`
	PageNo             int            `gorm:"not null;default:0" json:"page_no"`
	PredictedField     string         `gorm:"type:varchar(100);index:idx_ud_predicted_field" json:"predicted_field"`
	UserLevel          string         `gorm:"type:varchar(30)" json:"user_level"`
	ActualSkills       datatypes.JSON `gorm:"type:json" json:"actual_skills"`
	RecommendedSkills  datatypes.JSON `gorm:"type:json" json:"recommended_skills"`
	RecommendedCourses datatypes.JSON `gorm:"type:json" json:"recommended_courses"`
	DocumentMD5        string         `gorm:"type:char(32);index:idx_ud_document_md5" json:"document_md5"`
	OriginalObjectKey  string         `gorm:"type:varchar(1024)" json:"original_object_key,omitempty"`
}

func (AnalysisRecord) TableName() string {
	return "user_data"
}

// NewAnalysisRecord 将分析报告转换为数据库记录，列表字段保存为JSON数组
func NewAnalysisRecord(submissionUUID string, report *types.AnalysisReport, at time.Time) (*AnalysisRecord, error) {
	if report == nil {
		return nil, fmt.Errorf("分析报告不能为空")
	}

	skills, err := toJSON(nonNilStrings(report.Profile.Skills))
	if err != nil {
		return nil, fmt.Errorf("序列化技能列表失败: %w", err)
	}
	recSkills, err := toJSON(nonNilStrings(report.RecommendedSkills))
	if err != nil {
		return nil, fmt.Errorf("序列化推荐技能失败: %w", err)
	}
	courses := report.RecommendedCourses
	if courses == nil {
		courses = []types.Course{}
	}
	recCourses, err := toJSON(courses)
	if err != nil {
		return nil, fmt.Errorf("序列化推荐课程失败: %w", err)
	}

	return &AnalysisRecord{
		SubmissionUUID:     submissionUUID,
		Name:               report.Profile.Name,
		Email:              report.Profile.Email,
		Phone:              report.Profile.Phone,
		ResumeScore:        report.Score,
		Timestamp:          at,
		PageNo:             report.Profile.PageCount,
		PredictedField:     report.Field,
		UserLevel:          string(report.CandidateLevel),
		ActualSkills:       skills,
		RecommendedSkills:  recSkills,
		RecommendedCourses: recCourses,
	}, nil
}

// ToReport 从数据库记录还原分析报告
func (r *AnalysisRecord) ToReport() (*types.AnalysisReport, error) {
	report := &types.AnalysisReport{
		Profile: types.ExtractedProfile{
			Name:      r.Name,
			Email:     r.Email,
			Phone:     r.Phone,
			Skills:    []string{},
			PageCount: r.PageNo,
		},
		CandidateLevel:     types.CandidateLevel(r.UserLevel),
		Field:              r.PredictedField,
		RecommendedSkills:  []string{},
		RecommendedCourses: []types.Course{},
		Score:              r.ResumeScore,
	}
	if err := fromJSON(r.ActualSkills, &report.Profile.Skills); err != nil {
		return nil, fmt.Errorf("解析技能列表失败 (id=%d): %w", r.ID, err)
	}
	if err := fromJSON(r.RecommendedSkills, &report.RecommendedSkills); err != nil {
		return nil, fmt.Errorf("解析推荐技能失败 (id=%d): %w", r.ID, err)
	}
	if err := fromJSON(r.RecommendedCourses, &report.RecommendedCourses); err != nil {
		return nil, fmt.Errorf("解析推荐课程失败 (id=%d): %w", r.ID, err)
	}
	return report, nil
}

func toJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// fromJSON 空列不覆盖 dest 的默认值
func fromJSON(data datatypes.JSON, dest any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dest)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
