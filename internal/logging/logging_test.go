package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{name: "pretty", format: "pretty"},
		{name: "json", format: "json"},
		{name: "text", format: "text"},
		{name: "unknown", format: "fancy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := NewLogger(&buf, tt.format, slog.LevelInfo)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)

			logger.Info("hello")
			assert.Contains(t, buf.String(), "hello")
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(t.Context(), logger)
	FromContext(ctx).Info("from context")
	assert.Contains(t, buf.String(), "from context")

	// Without a stored logger the default is returned, never nil.
	assert.NotNil(t, FromContext(context.Background()))
}

func TestPrettyHandlerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, slog.LevelInfo)
	logger := slog.New(h)

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))

	logger.Debug("invisible")
	logger.Info("visible")
	assert.NotContains(t, buf.String(), "invisible")
	assert.Contains(t, buf.String(), "visible")
}

func TestPrettyHandlerFileAttr(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))

	logger.Warn("rewrite applied", slog.String("file", "common/cultures.txt"), slog.Int("line", 12))

	out := buf.String()
	assert.Contains(t, out, "rewrite applied")
	assert.Contains(t, out, "common/cultures.txt")
	assert.NotContains(t, out, "line", "non-file attrs are suppressed in pretty mode")
}

func TestPrettyHandlerPrefix(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))

	base.With(slog.String("game", "eu4")).WithGroup("parse").Info("done")

	line := strings.TrimSuffix(buf.String(), "\n")
	assert.Equal(t, "game=eu4 parse.done", line)
}
