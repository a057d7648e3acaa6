package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaults(t *testing.T) {
	log, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.True(t, log.Core().Enabled(0))
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postq.log")

	log, err := NewLogger(Config{Level: "debug", Format: "json", File: FileConfig{Path: path}})
	require.NoError(t, err)

	log.Info("queue saved")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"message":"queue saved"`))
}

func TestNewRotatingWriterDefaults(t *testing.T) {
	w := newRotatingWriter(FileConfig{Path: "x.log"})
	assert.Equal(t, 10, w.MaxSize)
	assert.Equal(t, 5, w.MaxBackups)
	assert.Equal(t, 30, w.MaxAge)
}
