package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/logger"
)

type ctxKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello", logger.Component("auth"))

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "auth", entry["component"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("level filters", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("context extractor", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				v, ok := ctx.Value(ctxKey{}).(string)
				return logger.RequestID(v), ok
			}),
		)
		log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "req-1"), "hello")
		assert.Equal(t, "req-1", decode(t, buf)["request_id"])
	})
}

func TestFromConfig(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	log := logger.FromConfig(logger.Config{
		Level:       "debug",
		Format:      "json",
		Environment: "prod",
		Service:     "fintrack",
	}, logger.WithOutput(buf))

	log.Debug("visible")
	entry := decode(t, buf)
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "fintrack", entry["service"])
	assert.Equal(t, "DEBUG", entry["level"])
}

func TestAttrs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a***@example.com", logger.Email("alice@example.com").Value.String())
	assert.Equal(t, "***", logger.Email("broken").Value.String())
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.Equal(t, "boom", logger.Error(errors.New("boom")).Value.Any().(error).Error())
	assert.True(t, logger.UserID(nil).Equal(slog.Attr{}))
}
