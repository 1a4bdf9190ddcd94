package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	closer, err := Init(Config{Level: "debug", Format: "json", File: logPath})
	require.NoError(t, err)
	require.NotNil(t, closer, "配置了日志文件时应返回closer")

	Info().Str("case", "file").Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"case":"file"`)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitFallsBackToInfo(t *testing.T) {
	closer, err := Init(Config{Level: "not-a-level"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestCtxWithoutLogger(t *testing.T) {
	l := Ctx(context.Background())
	require.NotNil(t, l, "上下文中没有logger时应返回全局logger")
}
