package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
	}

	for _, tt := range tests {
		log := NewLogger(tt.level)
		assert.Equal(t, tt.want, log.GetLevel(), "level %s", tt.level)
	}
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	log := NewLogger("info")
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "expected JSON formatter in production")
}

func TestWithComponentTagsEntries(t *testing.T) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	WithComponent(log, "backtest").Info("run complete")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "backtest", entry["component"])
	assert.Equal(t, "run complete", entry["msg"])
}
