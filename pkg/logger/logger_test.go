package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetMode(t *testing.T) {
	t.Cleanup(func() { SetMode("release") })

	tests := []struct {
		mode string
		want zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"release", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"test", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			SetMode(tt.mode)
			assert.Equal(t, tt.want.Level(), level.Level())
		})
	}
}
