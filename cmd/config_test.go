package cmd

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "probe", configBaseName)
	assert.Equal(t, "probe.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "include", includeFlagName)
	assert.Equal(t, "parallel", runParallelFlagName)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "paths.include", includeConfigKey)
	assert.Equal(t, "output.format", formatConfigKey)
	assert.Equal(t, "serve.transport", transportConfigKey)
	assert.Equal(t, 4, defaultRunParallel)
	assert.Equal(t, "stdio", defaultTransport)
	assert.Equal(t, "PROBE", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"empty uses default", "", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"upper case", "INFO", slog.LevelInfo},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", " error ", slog.LevelError},
		{"numeric", "-4", slog.LevelDebug},
		{"garbage uses default", "loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestNewLogHandler_Console(t *testing.T) {
	var stderr bytes.Buffer

	logger := slog.New(newLogHandler("", slog.LevelInfo, true, &stderr))
	logger.Debug("hidden")
	logger.Info("scanning test files", "count", 3)

	output := stderr.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, "scanning test files")
	assert.Contains(t, output, "count")
}

func TestNewLogHandler_File(t *testing.T) {
	handler := newLogHandler(t.TempDir()+"/probe.log", slog.LevelInfo, false, nil)
	require.NotNil(t, handler)

	_, isText := handler.(*slog.TextHandler)
	assert.True(t, isText)
}
