package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/types"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestResumeObjectKey(t *testing.T) {
	tests := []struct {
		name string
		uuid string
		ext  string
		want string
	}{
		{"带点扩展名", "abc", ".pdf", "resumes/abc.pdf"},
		{"不带点扩展名", "abc", "PDF", "resumes/abc.pdf"},
		{"无扩展名", "abc", "", "resumes/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResumeObjectKey(tt.uuid, tt.ext))
		})
	}
}

func TestGetContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", getContentType(".PDF"))
	assert.Equal(t, "application/pdf", getContentType("pdf"))
	assert.Equal(t, "text/plain", getContentType(".txt"))
	assert.Equal(t, "application/octet-stream", getContentType(".exe"))
	assert.Equal(t, "application/octet-stream", getContentType(""))
}

func TestNewResumeAnalyzedEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 18, 0, 0, 0, time.FixedZone("CST", 8*3600))
	report := &types.AnalysisReport{
		Profile:        types.ExtractedProfile{Skills: []string{"Python"}, PageCount: 1},
		CandidateLevel: types.LevelFresher,
		Field:          "Data Science",
		Score:          40,
	}

	evt := NewResumeAnalyzedEvent("uuid-1", "d41d8cd98f00b204e9800998ecf8427e", "cv.pdf", "resumes/uuid-1.pdf", report, at)
	assert.Equal(t, "Fresher", evt.CandidateLevel)
	assert.Equal(t, 40, evt.Score)
	assert.Equal(t, time.UTC, evt.AnalyzedAt.Location())

	data, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"submission_uuid": "uuid-1",
		"document_md5": "d41d8cd98f00b204e9800998ecf8427e",
		"file_name": "cv.pdf",
		"original_object_key": "resumes/uuid-1.pdf",
		"analyzed_at": "2024-05-01T10:00:00Z",
		"predicted_field": "Data Science",
		"candidate_level": "Fresher",
		"resume_score": 40,
		"skills": ["Python"]
	}`, string(data))
}

func TestNewResumeAnalyzedEventWithoutSkills(t *testing.T) {
	evt := NewResumeAnalyzedEvent("uuid-2", "md5", "", "", &types.AnalysisReport{CandidateLevel: types.LevelExperienced}, time.Now())

	data, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"skills":[]`, "空技能列表输出为数组而不是null")
	assert.NotContains(t, string(data), "original_object_key")
}

// 上传失败时 span 标记为对象存储错误
func TestUploadResumeFileRecordsSpanError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)

	client, err := minio.New("127.0.0.1:1", &minio.Options{
		Creds: credentials.NewStaticV4("access", "secret", ""),
	})
	require.NoError(t, err)
	m := &MinIO{client: client, originalBucket: "resumes-test", logger: logger.Component("minio")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := []byte("%PDF-1.4")
	_, err = m.UploadResumeFile(ctx, "uuid-1", ".pdf", bytes.NewReader(data), int64(len(data)))
	require.Error(t, err)

	var uploadSpan sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() == "MinIO.UploadResumeFile" {
			uploadSpan = s
		}
	}
	require.NotNil(t, uploadSpan)
	assert.Equal(t, codes.Error, uploadSpan.Status().Code)
	assert.Contains(t, uploadSpan.Attributes(), attribute.String("error.type", "object_storage"))
}
