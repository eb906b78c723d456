package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  logger.LogLevel
	}{
		{"silent", logger.Silent},
		{"ERROR", logger.Error},
		{" info ", logger.Info},
		{"warn", logger.Warn},
		{"", logger.Warn},
		{"verbose", logger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, LogLevel(tt.value))
		})
	}
}
