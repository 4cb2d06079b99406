package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZapLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	logger, err := NewZapLogger(Config{
		Level:       "warn",
		Format:      "json",
		Output:      "file",
		FilePath:    path,
		ServiceName: "coursepedia",
		Version:     "1.2.3",
		Environment: "staging",
	})
	require.NoError(t, err)

	logger.Info("dropped by level")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "warn", entry["log.level"])
	assert.Equal(t, "coursepedia", entry["service.name"])
	assert.Equal(t, "1.2.3", entry["service.version"])
	assert.Equal(t, "staging", entry["service.environment"])
	assert.Contains(t, entry, "@timestamp")
}

func TestNewZapLogger_Sampling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampled.log")

	logger, err := NewZapLogger(Config{Level: "info", Output: "file", FilePath: path, SampleInitial: 2})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		logger.Info("same message")
	}
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "same message"))
}

func TestNewZapLogger_BadFilePath(t *testing.T) {
	_, err := NewZapLogger(Config{Output: "file", FilePath: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}
