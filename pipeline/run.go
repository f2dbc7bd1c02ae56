// Package pipeline runs ordered plugin chains over a crux.Resource and
// provides the caller-facing Extractor.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/crux"
)

// ErrorHandler receives plugin failures. Failures never abort a run.
type ErrorHandler func(p crux.Plugin, err error)

// RunOption configures a single Run.
type RunOption func(*runConfig)

type runConfig struct {
	onError ErrorHandler
}

// WithRunErrorHandler sets the handler receiving plugin failures.
func WithRunErrorHandler(h ErrorHandler) RunOption {
	return func(c *runConfig) {
		c.onError = h
	}
}

// Run applies plugins in order to seed and returns the accumulated result.
// Plugins whose CanHandle rejects the current URL are skipped. A plugin
// error or panic is reported to the error handler and the plugin
// contributes nothing. Run stops early, returning what it has, when ctx is
// done.
func Run(ctx context.Context, plugins []crux.Plugin, seed *crux.Resource, opts ...RunOption) *crux.Resource {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	acc := seed.RemoveNullValues()
	for _, p := range plugins {
		if ctx.Err() != nil {
			break
		}
		if !p.CanHandle(acc.URL) {
			continue
		}

		res, err := handle(ctx, p, acc)
		if err != nil {
			if cfg.onError != nil {
				cfg.onError(p, err)
			}
			continue
		}
		if res == nil || res.Resource == nil {
			continue
		}

		switch res.Kind {
		case crux.Replacement:
			acc = acc.Replace(res.Resource)
		default:
			acc = acc.Merge(res.Resource)
		}
	}
	return acc
}

// handle invokes p, converting failures and panics into EPLUGIN errors.
func handle(ctx context.Context, p crux.Plugin, r *crux.Resource) (res *crux.Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			res, err = nil, crux.Errorf(crux.EPLUGIN, "%s panicked: %v", pluginName(p), v)
		}
	}()

	res, err = p.Handle(ctx, r)
	if err != nil {
		return nil, crux.WrapError(crux.EPLUGIN, err, "%s failed", pluginName(p))
	}
	return res, nil
}

func pluginName(p crux.Plugin) string {
	return fmt.Sprintf("%T", p)
}

// LogErrors returns an ErrorHandler that logs plugin failures to logger.
func LogErrors(logger *slog.Logger) ErrorHandler {
	return func(p crux.Plugin, err error) {
		logger.Warn("plugin failed",
			"plugin", pluginName(p),
			"err", err,
		)
	}
}
