package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/gostore/internal/config"
)

func TestInitReplacesGlobal(t *testing.T) {
	l, err := Init(&config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	defer zap.ReplaceGlobals(zap.NewNop())

	assert.Same(t, l, zap.L())
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	_, err := Init(&config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestSetLevelAtRuntime(t *testing.T) {
	l, err := Init(&config.LogConfig{Level: "info"})
	require.NoError(t, err)
	defer zap.ReplaceGlobals(zap.NewNop())
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("debug"))
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.Equal(t, zapcore.DebugLevel, Level())

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, zapcore.DebugLevel, Level())

	require.NoError(t, SetLevel(""))
	assert.Equal(t, zapcore.InfoLevel, Level())
}
