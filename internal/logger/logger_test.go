package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_trend_ranker/config"
)

func TestManager_SplitsStreams(t *testing.T) {
	var info, errs bytes.Buffer
	m := NewWithWriters("info", &info, &errs)

	m.Info().Str("mode", "trending").Msg("refresh done")
	m.Error().Msg("refresh failed")
	m.Debug().Msg("hidden at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(info.Bytes(), &entry))
	assert.Equal(t, "refresh done", entry["message"])
	assert.Equal(t, "trending", entry["mode"])
	assert.Equal(t, "info", entry["level"])

	assert.Contains(t, errs.String(), "refresh failed")
	assert.NotContains(t, info.String(), "hidden at info level")
}

func TestManager_WithComponent(t *testing.T) {
	var info bytes.Buffer
	m := NewWithWriters("debug", &info, &bytes.Buffer{})

	l := m.WithComponent("scheduler")
	l.Debug().Msg("tick")

	assert.Contains(t, info.String(), `"component":"scheduler"`)
}

func TestNew_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{LogDirectory: dir, LogOutputFile: "out.log", LogErrorFile: "err.log"}

	m, err := New(cfg)
	require.NoError(t, err)
	m.Info().Msg("to file")
	m.Error().Msg("to error file")
	require.NoError(t, m.Close())

	out, err := os.ReadFile(filepath.Join(dir, "out.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "to file"))

	errOut, err := os.ReadFile(filepath.Join(dir, "err.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errOut), "to error file")
}

func TestGlobal_FallsBackWithoutInitialize(t *testing.T) {
	require.NoError(t, Close())
	assert.NotPanics(t, func() {
		Info().Msg("fallback")
		Error().Msg("fallback")
	})
}

func TestInitializeQuiet_WritesInfoToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{LogDirectory: dir}

	_, err := InitializeQuiet(cfg)
	require.NoError(t, err)
	Info().Msg("quiet entry")
	require.NoError(t, Close())

	out, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "quiet entry")
}
