package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" DEBUG "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_Formats(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core), LogLevelDebug).With("component", "excel")

	l.Info("[Reader] loaded %d rows", 12)
	l.Warn("[Mapper] skipped row %d", 4)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "[Reader] loaded 12 rows", entries[0].Message)
		assert.Equal(t, "excel", entries[0].ContextMap()["component"])
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
	}
}
