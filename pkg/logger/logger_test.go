package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anivanovic/codestats/pkg/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "defaults", level: "", format: ""},
		{name: "debug text", level: "debug", format: "text"},
		{name: "warning json", level: "warning", format: "json"},
		{name: "silent ignores format", level: "silent", format: "xml"},
		{name: "unknown level", level: "trace", format: "text", wantErr: true},
		{name: "unknown format", level: "info", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, err := logger.New(&bytes.Buffer{}, tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_JSONLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := logger.New(buf, "warn", "json")
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", logger.Secret("token", "ghp_abcdefgh1234"))
	require.NoError(t, l.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "************1234", line["token"])
}

func TestNew_Silent(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := logger.New(buf, "silent", "")
	require.NoError(t, err)
	l.Error("nothing", zap.Int("n", 1))
	assert.Empty(t, buf.String())
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", logger.Mask(""))
	assert.Equal(t, "******", logger.Mask("abcdef"))
	assert.Equal(t, "********", logger.Mask("abcdefgh"))
	assert.Equal(t, "*****6789", logger.Mask("123456789"))
}
