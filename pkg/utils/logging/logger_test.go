package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogFileName(t *testing.T) {
	at := time.Date(2026, time.January, 4, 9, 30, 15, 0, time.UTC)

	assert.Equal(t, filepath.Join("logs", "test_2026-01-04_09-30-15.log"), LogFileName("logs", "test", at))
	assert.Equal(t, filepath.Join("logs", "ridepass_2026-01-04_09-30-15.log"), LogFileName("logs", "", at))
}

func TestInitLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, path, err := InitLogger("test", WithDir(dir), WithConsole(&console))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))

	logger.Debug("only in file", zap.Int("rides", 22))
	logger.Info("in both")
	_ = logger.Sync()

	assert.NotContains(t, console.String(), "only in file")
	assert.Contains(t, console.String(), "in both")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "only in file", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "test", entry["env"])
	assert.EqualValues(t, 22, entry["rides"])
	assert.Contains(t, entry, "timestamp")
}

func TestInitLogger_Verbose(t *testing.T) {
	var console bytes.Buffer

	logger, _, err := InitLogger("test", WithDir(t.TempDir()), WithConsole(&console), WithVerbose(true))
	require.NoError(t, err)

	logger.Debug("debug line")
	_ = logger.Sync()

	assert.Contains(t, console.String(), "debug line")
}
