package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestInit_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", &buf)
	t.Cleanup(func() { Init("warn", nil) })

	Debugf("hidden %d", 1)
	Warnf("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "WARN")
}

func TestInit_UnknownLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	Init("chatty", &buf)
	t.Cleanup(func() { Init("warn", nil) })

	assert.True(t, level.Enabled(zapcore.WarnLevel))
	assert.False(t, level.Enabled(zapcore.InfoLevel))
}

func TestErrorf_WrittenAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	Init("error", &buf)
	t.Cleanup(func() { Init("warn", nil) })

	Warnf("quiet")
	Errorf("request failed with status %d", 500)

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), "request failed with status 500")
}
