package slog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/crux"
)

// Ensure LoggingPlugin implements crux.Plugin.
var _ crux.Plugin = (*LoggingPlugin)(nil)

// LoggingPlugin wraps a Plugin with debug logging of each invocation.
type LoggingPlugin struct {
	next   crux.Plugin
	name   string
	logger *slog.Logger
}

// NewLoggingPlugin creates a new LoggingPlugin.
func NewLoggingPlugin(next crux.Plugin, logger *slog.Logger) *LoggingPlugin {
	return &LoggingPlugin{next: next, name: fmt.Sprintf("%T", next), logger: logger}
}

// WrapPlugins wraps each plugin in a LoggingPlugin.
func WrapPlugins(plugins []crux.Plugin, logger *slog.Logger) []crux.Plugin {
	out := make([]crux.Plugin, len(plugins))
	for i, p := range plugins {
		out[i] = NewLoggingPlugin(p, logger)
	}
	return out
}

// CanHandle delegates to the wrapped plugin.
func (p *LoggingPlugin) CanHandle(u *url.URL) bool {
	return p.next.CanHandle(u)
}

// Handle delegates to the wrapped plugin and logs the result.
func (p *LoggingPlugin) Handle(ctx context.Context, r *crux.Resource) (res *crux.Result, err error) {
	defer func(begin time.Time) {
		kind, fields := "none", 0
		if res != nil && res.Resource != nil {
			kind = res.Kind.String()
			fields = len(res.Resource.Fields) + len(res.Resource.Objects) + len(res.Resource.URLs)
		}
		p.logger.Debug("plugin",
			"plugin", p.name,
			"kind", kind,
			"fields", fields,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Handle(ctx, r)
}
