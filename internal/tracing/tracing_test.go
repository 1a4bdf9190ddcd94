package tracing

import (
	"context"
	"errors"
	"testing"

	"resume-analyzer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMaskPII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"J", "*"},
		{"张三", "张*"},
		{"Ann", "A*n"},
		{"555-123-4567", "55********67"},
		{"john.smith@example.com", "jo******************om"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskPII(tt.in), "输入: %s", tt.in)
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "a...f", TruncateString("abcdef", 5))
	assert.Len(t, []rune(SafeSQL(string(make([]byte, 2000)))), MaxSQLLength-1)
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordError(span, errors.New("boom"), ErrorTypeDB, attribute.String("db.table", "user_data"))
	RecordError(span, nil, ErrorTypeDB)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("error.type", "db"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("db.table", "user_data"))
}

func TestRecordHTTPError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "http")

	RecordHTTPError(span, errors.New("unprocessable"), 422)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.String("error.category", "client_error"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.status_code", 422))
}

func TestInitProvider(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = InitProvider(context.Background(), config.TracingConfig{Enabled: true})
	assert.Error(t, err, "缺少 endpoint 时应报错")
}
