package storage

import (
	"time"

	"resume-analyzer/internal/types"
)

// ResumeAnalyzedEvent 简历分析完成事件，经 outbox 发布到 RabbitMQ
type ResumeAnalyzedEvent struct {
	SubmissionUUID    string    `json:"submission_uuid"`
	DocumentMD5       string    `json:"document_md5"`
	FileName          string    `json:"file_name,omitempty"`
	OriginalObjectKey string    `json:"original_object_key,omitempty"` // MinIO中的对象路径
	AnalyzedAt        time.Time `json:"analyzed_at"`

	Field          string   `json:"predicted_field"`
	CandidateLevel string   `json:"candidate_level"`
	Score          int      `json:"resume_score"`
	Skills         []string `json:"skills"`
}

// NewResumeAnalyzedEvent 由分析报告构造事件
func NewResumeAnalyzedEvent(submissionUUID, documentMD5, fileName, objectKey string, report *types.AnalysisReport, at time.Time) ResumeAnalyzedEvent {
	evt := ResumeAnalyzedEvent{
		SubmissionUUID:    submissionUUID,
		DocumentMD5:       documentMD5,
		FileName:          fileName,
		OriginalObjectKey: objectKey,
		AnalyzedAt:        at.UTC(),
		Skills:            []string{},
	}
	if report != nil {
		evt.Field = report.Field
		evt.CandidateLevel = string(report.CandidateLevel)
		evt.Score = report.Score
		if report.Profile.Skills != nil {
			evt.Skills = report.Profile.Skills
		}
	}
	return evt
}
