package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("development environment uses text and debug", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment("dev", "storekit"))
		log.Debug("details")

		out := buf.String()
		assert.Contains(t, out, "level=DEBUG")
		assert.Contains(t, out, "service=storekit")
		assert.Contains(t, out, "env=development")
	})

	t.Run("production environment drops debug", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment(logger.EnvProduction, "storekit"))
		log.Debug("hidden")
		assert.Empty(t, buf.String())

		log.Info("shown")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	extractor := func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(ctxKey{}).(string); ok {
			return logger.TenantID(v), true
		}
		return slog.Attr{}, false
	}
	log := logger.New(logger.WithOutput(buf), logger.WithContextExtractors(nil, extractor))

	ctx := context.WithValue(context.Background(), ctxKey{}, "t-1")
	log.With("k", "v").WithGroup("g").InfoContext(ctx, "scoped")
	log.InfoContext(context.Background(), "unscoped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"tenant_id":"t-1"`)
	assert.NotContains(t, lines[1], "tenant_id")
}

func TestContextExtractorsKeepExplicitKeys(t *testing.T) {
	t.Parallel()

	extractor := func(ctx context.Context) (slog.Attr, bool) {
		return logger.TenantID("from-context"), true
	}
	empty := func(ctx context.Context) (slog.Attr, bool) {
		return logger.TenantID(nil), true
	}

	tests := []struct {
		name string
		log  func(l *slog.Logger)
		want string
	}{
		{"record attr wins", func(l *slog.Logger) { l.Info("x", logger.TenantID("explicit")) }, "explicit"},
		{"bound attr wins", func(l *slog.Logger) { l.With(logger.TenantID("bound")).Info("x") }, "bound"},
		{"extractor fills the gap", func(l *slog.Logger) { l.Info("x") }, "from-context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			tt.log(logger.New(logger.WithOutput(buf), logger.WithContextExtractors(empty, extractor)))

			assert.Equal(t, 1, strings.Count(buf.String(), `"tenant_id"`), buf.String())
			assert.Contains(t, buf.String(), `"tenant_id":"`+tt.want+`"`)
		})
	}
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.Equal(t, "error", logger.Error(errors.New("x")).Key)
	assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
	assert.Len(t, logger.Errors(errors.New("a"), nil, errors.New("b")).Value.Group(), 2)
	assert.True(t, logger.TenantID(nil).Equal(slog.Attr{}))
	assert.Equal(t, "schema", logger.Schema("tenant_x").Key)
	assert.Equal(t, "reason", logger.Reason("cross_tenant").Key)

	long := strings.Repeat("a", 5000)
	sql := logger.SQL(long).Value.String()
	assert.Less(t, len(sql), len(long))
	assert.True(t, strings.HasSuffix(sql, "..."))
}
