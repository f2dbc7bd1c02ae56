package crux

import (
	"context"
	"net/url"
)

// Plugin is a single extraction step in a pipeline.
type Plugin interface {
	// CanHandle reports whether the plugin applies to the page at u.
	// u is nil for raw HTML extractions; plugins that need an address
	// return false.
	CanHandle(u *url.URL) bool

	// Handle inspects r and returns its contribution. A nil Result means
	// the plugin has nothing to add. Handle must not modify r.
	Handle(ctx context.Context, r *Resource) (*Result, error)
}

// ResultKind tells the pipeline how to fold a plugin's Result.
type ResultKind int

const (
	// Contribution results are merged field by field into the accumulator.
	Contribution ResultKind = iota

	// Replacement results substitute a new origin document and URL for
	// all remaining plugins.
	Replacement
)

// String returns the name of the result kind.
func (k ResultKind) String() string {
	switch k {
	case Contribution:
		return "contribution"
	case Replacement:
		return "replacement"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single plugin invocation.
type Result struct {
	Kind     ResultKind
	Resource *Resource
}

// Contribute returns a Result that merges r into the accumulator.
func Contribute(r *Resource) *Result {
	return &Result{Kind: Contribution, Resource: r}
}

// Replace returns a Result that restarts processing on r.
func Replace(r *Resource) *Result {
	return &Result{Kind: Replacement, Resource: r}
}
