package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xscraper/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "nope"})
	assert.Error(t, err)
}

func TestTestLoggerCapturesFields(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("run", 1).InfoWithFields("pass complete", map[string]interface{}{
		"new_records": 4,
	})
	tl.Warn("stall detected")

	entries := tl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "pass complete", entries[0].Message)
	assert.Equal(t, 1, entries[0].Fields["run"])
	assert.Equal(t, 4, entries[0].Fields["new_records"])
	assert.Equal(t, "warn", entries[1].Level)
}

func TestGlobalLogger(t *testing.T) {
	tl := NewTestLogger()
	SetLogger(tl)
	t.Cleanup(func() { SetLogger(nil) })

	GetLogger().Info("hello")
	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Message)
}
