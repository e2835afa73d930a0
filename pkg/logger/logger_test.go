package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" INFO ", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, testCase := range tests {
		t.Run(testCase.in, func(t *testing.T) {
			assert.Equal(t, testCase.want, ParseLevel(testCase.in))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Output: "file", Path: "/tmp"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "app.log", cfg.Filename)
	assert.Equal(t, 100, cfg.MaxSizeMB)
	assert.Equal(t, 10, cfg.MaxBackups)
	assert.Equal(t, 7, cfg.MaxAgeDays)

	assert.Error(t, (&Config{Output: "file"}).Validate())
	assert.Error(t, (&Config{Output: "kafka"}).Validate())
	assert.NoError(t, (&Config{}).Validate())
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	log, err := New(Config{Output: "file", Path: dir, Filename: "svc.log", Level: "debug"})
	require.NoError(t, err)

	log.Infow("table resized", "restaurant_id", "r-1", "count", 4)
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "svc.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "table resized")
	assert.Contains(t, string(data), "restaurant_id")
}

func TestNewRejectsInvalidOutput(t *testing.T) {
	_, err := New(Config{Output: "syslog"})
	assert.Error(t, err)
}
