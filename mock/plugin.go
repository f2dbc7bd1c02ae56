package mock

import (
	"context"
	"net/url"

	"github.com/fwojciec/crux"
)

var _ crux.Plugin = (*Plugin)(nil)

// Plugin is a mock implementation of crux.Plugin.
// A nil CanHandleFn accepts every URL.
type Plugin struct {
	CanHandleFn func(u *url.URL) bool
	HandleFn    func(ctx context.Context, r *crux.Resource) (*crux.Result, error)
}

func (p *Plugin) CanHandle(u *url.URL) bool {
	if p.CanHandleFn == nil {
		return true
	}
	return p.CanHandleFn(u)
}

func (p *Plugin) Handle(ctx context.Context, r *crux.Resource) (*crux.Result, error) {
	return p.HandleFn(ctx, r)
}
