package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"

	"github.com/fwojciec/crux"
	"github.com/fwojciec/crux/mock"
	cruxslog "github.com/fwojciec/crux/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingPlugin_Handle(t *testing.T) {
	t.Parallel()

	t.Run("logs plugin name kind and field count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Plugin{
			HandleFn: func(_ context.Context, _ *crux.Resource) (*crux.Result, error) {
				return crux.Contribute(&crux.Resource{
					Fields:  map[crux.Field]string{crux.Title: "T", crux.Author: "A"},
					Objects: map[crux.Field]any{crux.DurationMs: int64(1000)},
				}), nil
			},
		}

		plugin := cruxslog.NewLoggingPlugin(inner, debugLogger(&buf))
		res, err := plugin.Handle(context.Background(), &crux.Resource{})

		require.NoError(t, err)
		require.NotNil(t, res)
		output := buf.String()
		assert.Contains(t, output, "msg=plugin")
		assert.Contains(t, output, "plugin=*mock.Plugin")
		assert.Contains(t, output, "kind=contribution")
		assert.Contains(t, output, "fields=3")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs nil result as none", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Plugin{
			HandleFn: func(_ context.Context, _ *crux.Resource) (*crux.Result, error) {
				return nil, nil
			},
		}

		plugin := cruxslog.NewLoggingPlugin(inner, debugLogger(&buf))
		_, err := plugin.Handle(context.Background(), &crux.Resource{})

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "kind=none")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Plugin{
			HandleFn: func(_ context.Context, _ *crux.Resource) (*crux.Result, error) {
				return nil, errors.New("bad markup")
			},
		}

		plugin := cruxslog.NewLoggingPlugin(inner, debugLogger(&buf))
		_, err := plugin.Handle(context.Background(), &crux.Resource{})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"bad markup\"")
	})

	t.Run("stays quiet above debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		plugin := cruxslog.NewLoggingPlugin(&mock.Plugin{
			HandleFn: func(_ context.Context, _ *crux.Resource) (*crux.Result, error) {
				return nil, nil
			},
		}, logger)

		_, err := plugin.Handle(context.Background(), &crux.Resource{})

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingPlugin_CanHandle(t *testing.T) {
	t.Parallel()

	t.Run("delegates to inner plugin", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Plugin{
			CanHandleFn: func(u *url.URL) bool { return u != nil },
		}
		plugin := cruxslog.NewLoggingPlugin(inner, slog.New(slog.DiscardHandler))

		assert.False(t, plugin.CanHandle(nil))
		assert.True(t, plugin.CanHandle(&url.URL{Scheme: "https", Host: "example.com"}))
	})
}

func TestWrapPlugins(t *testing.T) {
	t.Parallel()

	plugins := []crux.Plugin{&mock.Plugin{}, &mock.Plugin{}}
	wrapped := cruxslog.WrapPlugins(plugins, slog.New(slog.DiscardHandler))

	require.Len(t, wrapped, 2)
	for _, p := range wrapped {
		assert.IsType(t, &cruxslog.LoggingPlugin{}, p)
	}
}
