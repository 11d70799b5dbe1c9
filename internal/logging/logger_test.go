package logging

import (
	"testing"

	"github.com/Cyclone1070/nyx/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		t.Run(lvl, func(t *testing.T) {
			logger, err := New(config.LoggingConfig{Level: lvl})
			require.NoError(t, err)
			want, _ := zapcore.ParseLevel(lvl)
			assert.True(t, logger.Core().Enabled(want))
			if want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(want-1))
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "info", JSON: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestVerbose(t *testing.T) {
	cfg := Verbose(config.LoggingConfig{Level: "error", JSON: true})
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.JSON)
}
