package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/storage"
	"resume-analyzer/internal/storage/models"
	"resume-analyzer/internal/types"
	"resume-analyzer/pkg/utils"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// MockAnalyzer 模拟简历分析器
type MockAnalyzer struct {
	report *types.AnalysisReport
	err    error
	calls  int
}

func (m *MockAnalyzer) Analyze(ctx context.Context, doc types.ResumeDocument) (*types.AnalysisReport, error) {
	m.calls++
	return m.report, m.err
}

// MockRecordStore 模拟分析记录存储
type MockRecordStore struct {
	mu      sync.Mutex
	records []*models.AnalysisRecord
	outbox  []*models.OutboxMessage
	err     error
}

func (m *MockRecordStore) InsertAnalysisRecord(ctx context.Context, record *models.AnalysisRecord, outbox *models.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	if outbox != nil {
		m.outbox = append(m.outbox, outbox)
	}
	return nil
}

// MockReportCache 基于内存的报告缓存
type MockReportCache struct {
	entries map[string]*storage.CachedReport
	ttl     time.Duration
	getErr  error
	setErr  error
}

func newMockReportCache() *MockReportCache {
	return &MockReportCache{entries: make(map[string]*storage.CachedReport)}
}

func (m *MockReportCache) GetCachedReport(ctx context.Context, md5Hex string) (*storage.CachedReport, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[md5Hex], nil
}

func (m *MockReportCache) SetCachedReport(ctx context.Context, md5Hex string, cached *storage.CachedReport, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.ttl = ttl
	m.entries[md5Hex] = cached
	return nil
}

// MockArchive 模拟对象存储
type MockArchive struct {
	keys []string
	data [][]byte
	err  error
}

func (m *MockArchive) UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := storage.ResumeObjectKey(submissionUUID, fileExt)
	m.keys = append(m.keys, key)
	m.data = append(m.data, b)
	return key, nil
}

func sampleReport() *types.AnalysisReport {
	return &types.AnalysisReport{
		Profile: types.ExtractedProfile{
			Name:      "John Smith",
			Email:     "john.smith@example.com",
			Phone:     "555-123-4567",
			Skills:    []string{"Python"},
			PageCount: 1,
		},
		CandidateLevel:     types.LevelFresher,
		Field:              "Data Science",
		RecommendedSkills:  []string{"Data Visualization"},
		RecommendedCourses: []types.Course{{Name: "Course", URL: "https://example.com"}},
		Score:              40,
	}
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestProcessor(t *testing.T, comp Components, opts ...SettingOpt) *ResumeProcessor {
	t.Helper()
	compOpts := []ComponentOpt{WithAnalyzer(comp.Analyzer), WithRecordStore(comp.Store)}
	if comp.Cache != nil {
		compOpts = append(compOpts, WithReportCache(comp.Cache))
	}
	if comp.Archive != nil {
		compOpts = append(compOpts, WithObjectArchive(comp.Archive))
	}
	opts = append([]SettingOpt{WithClock(func() time.Time { return fixedNow })}, opts...)
	rp, err := NewResumeProcessor(compOpts, opts...)
	require.NoError(t, err)
	return rp
}

func TestNewResumeProcessorRequiresComponents(t *testing.T) {
	_, err := NewResumeProcessor(nil)
	assert.ErrorIs(t, err, ErrMissingComponent)

	_, err = NewResumeProcessor([]ComponentOpt{WithAnalyzer(&MockAnalyzer{})})
	assert.ErrorIs(t, err, ErrMissingComponent)
}

func TestProcessPersistsRecordAndEvent(t *testing.T) {
	store := &MockRecordStore{}
	cache := newMockReportCache()
	archive := &MockArchive{}
	rp := newTestProcessor(t, Components{
		Analyzer: &MockAnalyzer{report: sampleReport()},
		Store:    store,
		Cache:    cache,
		Archive:  archive,
	}, WithEventTarget("resume.events.exchange", "resume.analyzed"), WithCacheTTL(time.Hour))

	data := []byte("%PDF-1.4 resume")
	result, err := rp.Process(context.Background(), Upload{FileName: "CV.PDF", Data: data})
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, utils.CalculateMD5(data), result.DocumentMD5)

	id, err := uuid.FromString(result.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, byte(7), id.Version(), "提交ID使用UUIDv7")

	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.Equal(t, result.SubmissionUUID, record.SubmissionUUID)
	assert.Equal(t, result.DocumentMD5, record.DocumentMD5)
	assert.Equal(t, "resumes/"+result.SubmissionUUID+".pdf", record.OriginalObjectKey)
	assert.Equal(t, fixedNow, record.Timestamp)
	assert.Equal(t, 40, record.ResumeScore)

	require.Len(t, archive.data, 1)
	assert.Equal(t, data, archive.data[0])

	require.Len(t, store.outbox, 1)
	msg := store.outbox[0]
	assert.Equal(t, "resume.analyzed", msg.EventType)
	assert.Equal(t, "resume.events.exchange", msg.TargetExchange)
	assert.Equal(t, models.OutboxStatusPending, msg.Status)

	var evt storage.ResumeAnalyzedEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
	assert.Equal(t, result.SubmissionUUID, evt.SubmissionUUID)
	assert.Equal(t, "Data Science", evt.Field)
	assert.Equal(t, "CV.PDF", evt.FileName)

	assert.Equal(t, time.Hour, cache.ttl)
	require.Contains(t, cache.entries, result.DocumentMD5)
	assert.Equal(t, result.SubmissionUUID, cache.entries[result.DocumentMD5].SubmissionUUID)
}

func TestProcessCacheHit(t *testing.T) {
	store := &MockRecordStore{}
	cache := newMockReportCache()
	mockAnalyzer := &MockAnalyzer{report: sampleReport()}
	rp := newTestProcessor(t, Components{Analyzer: mockAnalyzer, Store: store, Cache: cache})

	data := []byte("same document")
	first, err := rp.Process(context.Background(), Upload{FileName: "a.pdf", Data: data})
	require.NoError(t, err)

	second, err := rp.Process(context.Background(), Upload{FileName: "b.pdf", Data: data})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.SubmissionUUID, second.SubmissionUUID)
	assert.Equal(t, first.Report, second.Report)

	assert.Equal(t, 1, mockAnalyzer.calls, "相同文档只分析一次")
	assert.Len(t, store.records, 1)
}

// cache_ttl 为 0 时既不读也不写缓存，重复提交各自追加记录
func TestProcessZeroTTLDisablesCache(t *testing.T) {
	store := &MockRecordStore{}
	cache := newMockReportCache()
	mockAnalyzer := &MockAnalyzer{report: sampleReport()}
	rp := newTestProcessor(t, Components{Analyzer: mockAnalyzer, Store: store, Cache: cache}, WithCacheTTL(0))

	data := []byte("same document")
	first, err := rp.Process(context.Background(), Upload{FileName: "a.pdf", Data: data})
	require.NoError(t, err)
	second, err := rp.Process(context.Background(), Upload{FileName: "a.pdf", Data: data})
	require.NoError(t, err)

	assert.False(t, second.Cached)
	assert.NotEqual(t, first.SubmissionUUID, second.SubmissionUUID)
	assert.Equal(t, 2, mockAnalyzer.calls)
	assert.Len(t, store.records, 2)
	assert.Empty(t, cache.entries)
}

// 目录指纹变化后旧报告不再命中
func TestProcessCacheNamespace(t *testing.T) {
	store := &MockRecordStore{}
	cache := newMockReportCache()
	mockAnalyzer := &MockAnalyzer{report: sampleReport()}
	data := []byte("same document")

	oldCatalog := newTestProcessor(t, Components{Analyzer: mockAnalyzer, Store: store, Cache: cache}, WithCacheNamespace("aaaa"))
	_, err := oldCatalog.Process(context.Background(), Upload{FileName: "a.pdf", Data: data})
	require.NoError(t, err)
	assert.Contains(t, cache.entries, "aaaa:"+utils.CalculateMD5(data))

	newCatalog := newTestProcessor(t, Components{Analyzer: mockAnalyzer, Store: store, Cache: cache}, WithCacheNamespace("bbbb"))
	result, err := newCatalog.Process(context.Background(), Upload{FileName: "a.pdf", Data: data})
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, 2, mockAnalyzer.calls)
	assert.Len(t, store.records, 2)
}

func TestProcessToleratesCacheAndArchiveFailures(t *testing.T) {
	store := &MockRecordStore{}
	cache := newMockReportCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	rp := newTestProcessor(t, Components{
		Analyzer: &MockAnalyzer{report: sampleReport()},
		Store:    store,
		Cache:    cache,
		Archive:  &MockArchive{err: errors.New("minio down")},
	})

	result, err := rp.Process(context.Background(), Upload{FileName: "a.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SubmissionUUID)

	require.Len(t, store.records, 1)
	assert.Empty(t, store.records[0].OriginalObjectKey)
	assert.Empty(t, store.outbox, "未配置事件目标时不写outbox")
}

func TestProcessPersistFailure(t *testing.T) {
	cache := newMockReportCache()
	rp := newTestProcessor(t, Components{
		Analyzer: &MockAnalyzer{report: sampleReport()},
		Store:    &MockRecordStore{err: errors.New("connection refused")},
		Cache:    cache,
	})

	_, err := rp.Process(context.Background(), Upload{FileName: "a.pdf", Data: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistFailed)

	var procErr *ResumeProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "persist", procErr.Op)
	assert.Contains(t, procErr.Detail, "connection refused")
	assert.Empty(t, cache.entries, "保存失败时不写缓存")
}

func TestProcessSurfacesUnreadableDocument(t *testing.T) {
	store := &MockRecordStore{}
	rp := newTestProcessor(t, Components{
		Analyzer: &MockAnalyzer{err: analyzer.NewUnreadableError("a.pdf", "not a pdf", nil)},
		Store:    store,
	})

	_, err := rp.Process(context.Background(), Upload{FileName: "a.pdf", Data: []byte("x")})
	assert.ErrorIs(t, err, analyzer.ErrUnreadableDocument)
	assert.Empty(t, store.records)
}

func TestProcessRecordsTimeoutOnSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	rp := newTestProcessor(t, Components{
		Analyzer: &MockAnalyzer{err: fmt.Errorf("PDF解析未完成: %w", context.DeadlineExceeded)},
		Store:    &MockRecordStore{},
	})
	_, err := rp.Process(context.Background(), Upload{FileName: "a.pdf", Data: []byte("x")})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var found bool
	for _, s := range recorder.Ended() {
		if s.Name() == "ResumeProcessor.Process" {
			found = true
			assert.Contains(t, s.Attributes(), attribute.String("error.type", "timeout"))
		}
	}
	assert.True(t, found)
}

func TestProcessEmptyUpload(t *testing.T) {
	rp := newTestProcessor(t, Components{Analyzer: &MockAnalyzer{}, Store: &MockRecordStore{}})
	_, err := rp.Process(context.Background(), Upload{FileName: "a.pdf"})
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

type stubExtractor struct {
	text  string
	pages int
}

func (s stubExtractor) ExtractDocument(ctx context.Context, r io.Reader, uri string) (*types.ExtractedText, error) {
	return &types.ExtractedText{Text: s.text, PageCount: s.pages}, nil
}

func TestProcessWithAnalyzer(t *testing.T) {
	a := analyzer.New(nil, analyzer.WithTextExtractor(stubExtractor{
		text:  "Objective: build React apps with Django. Projects: shop. Hobbies: chess",
		pages: 2,
	}))

	store := &MockRecordStore{}
	rp := newTestProcessor(t, Components{Analyzer: a, Store: store})

	result, err := rp.Process(context.Background(), Upload{FileName: "cv.pdf", Data: []byte("pdf")})
	require.NoError(t, err)
	assert.Equal(t, "Web Development", result.Report.Field)
	assert.Equal(t, types.LevelIntermediate, result.Report.CandidateLevel)
	assert.Equal(t, 60, result.Report.Score)

	require.Len(t, store.records, 1)
	restored, err := store.records[0].ToReport()
	require.NoError(t, err)
	assert.Equal(t, result.Report, restored)
}
