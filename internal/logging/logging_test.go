package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
		env   string
		want  zapcore.Level
	}{
		{"development debug", "debug", "development", zapcore.DebugLevel},
		{"production warn", "warn", "production", zapcore.WarnLevel},
		{"unknown level falls back to info", "loud", "development", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.env)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
			assert.Same(t, log, zap.L())
		})
	}
}
