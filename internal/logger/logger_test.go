package logger

import (
	"context"
	"testing"

	"github.com/feesync/feesync/internal/config"
	"github.com/feesync/feesync/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevel(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Deployment.Mode = types.ModeAPI
	cfg.Logging.Level = types.LogLevelWarn

	log, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.WarnLevel))

	assert.Equal(t, zapcore.InfoLevel, levelFor(nil))
}

func TestGetLoggerWithContext(t *testing.T) {
	log := NewNopLogger()
	assert.Same(t, log, log.GetLoggerWithContext(context.Background()))

	ctx := context.WithValue(context.Background(), types.CtxRequestID, "req-1")
	assert.NotSame(t, log, log.GetLoggerWithContext(ctx))
}
