package models

import (
	"encoding/json"
	"testing"
	"time"

	"resume-analyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *types.AnalysisReport {
	return &types.AnalysisReport{
		Profile: types.ExtractedProfile{
			Name:      "John Smith",
			Email:     "john.smith@example.com",
			Phone:     "555-123-4567",
			Skills:    []string{"Flask", "Python"},
			PageCount: 1,
		},
		CandidateLevel:    types.LevelFresher,
		Field:             "Data Science",
		RecommendedSkills: []string{"Data Visualization", "Keras"},
		RecommendedCourses: []types.Course{
			{Name: "Machine Learning by Andrew NG", URL: "https://www.coursera.org/learn/machine-learning"},
		},
		Score: 40,
	}
}

func TestAnalysisRecordRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	report := sampleReport()

	record, err := NewAnalysisRecord("0190a1b2-0000-7000-8000-000000000001", report, at)
	require.NoError(t, err)
	assert.Equal(t, "user_data", record.TableName())
	assert.Equal(t, 40, record.ResumeScore)
	assert.Equal(t, 1, record.PageNo)
	assert.Equal(t, "Fresher", record.UserLevel)
	assert.Equal(t, at, record.Timestamp)
	assert.JSONEq(t, `["Flask","Python"]`, string(record.ActualSkills), "列表以JSON数组保存")

	restored, err := record.ToReport()
	require.NoError(t, err)
	assert.Equal(t, report, restored)
}

func TestAnalysisRecordEmptyLists(t *testing.T) {
	report := &types.AnalysisReport{
		Profile:        types.ExtractedProfile{PageCount: 3},
		CandidateLevel: types.LevelExperienced,
	}

	record, err := NewAnalysisRecord("id", report, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(record.ActualSkills))
	assert.Equal(t, "[]", string(record.RecommendedSkills))
	assert.Equal(t, "[]", string(record.RecommendedCourses))

	restored, err := record.ToReport()
	require.NoError(t, err)
	assert.Equal(t, []string{}, restored.Profile.Skills)
	assert.Equal(t, []types.Course{}, restored.RecommendedCourses)
	assert.Equal(t, "", restored.Field)
	assert.Equal(t, 0, restored.Score)
}

func TestAnalysisRecordNullColumns(t *testing.T) {
	record := &AnalysisRecord{ID: 7, UserLevel: "Intermediate", PageNo: 2}
	restored, err := record.ToReport()
	require.NoError(t, err)
	assert.Equal(t, []string{}, restored.Profile.Skills)
	assert.Equal(t, types.LevelIntermediate, restored.CandidateLevel)

	record.ActualSkills = []byte("['Python']")
	_, err = record.ToReport()
	assert.Error(t, err, "非JSON格式的列表无法还原")
}

func TestAnalysisRecordJSON(t *testing.T) {
	record, err := NewAnalysisRecord("id", sampleReport(), time.Now())
	require.NoError(t, err)

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{"Flask", "Python"}, decoded["actual_skills"], "列表列在接口中输出为数组")
	assert.NotContains(t, decoded, "original_object_key")
}

func TestNewAnalysisRecordNilReport(t *testing.T) {
	_, err := NewAnalysisRecord("id", nil, time.Now())
	assert.Error(t, err)
}
