package crux

import (
	"maps"
	"net/url"
	"time"

	"golang.org/x/net/html"
)

// Resource is the result of an extraction. Plugins return partial Resources
// which the pipeline folds into an accumulator with Merge or Replace.
//
// A Resource handed to a plugin must be treated as read-only. Merge and
// Replace always return a new value.
type Resource struct {
	// URL is the resolved absolute URL of the page. Nil for raw HTML
	// extractions without a known address.
	URL *url.URL

	// Document is the parsed tree of the page being processed.
	Document *html.Node

	// Fields holds scalar metadata such as the title or description.
	Fields map[Field]string

	// Objects holds numeric or structured values such as DurationMs.
	Objects map[Field]any

	// URLs holds resolved absolute URLs such as the favicon or feed.
	URLs map[Field]*url.URL

	// Article is the extracted main content fragment.
	Article *html.Node
}

// Merge returns a new Resource holding the union of r and other. Values
// from other win, except that nil values never overwrite existing ones.
// Neither r nor other is modified.
func (r *Resource) Merge(other *Resource) *Resource {
	out := r.clone()
	if other == nil {
		return out
	}
	other = other.RemoveNullValues()

	if other.URL != nil {
		out.URL = other.URL
	}
	if other.Document != nil {
		out.Document = other.Document
	}
	if other.Article != nil {
		out.Article = other.Article
	}
	out.Fields = mergeMaps(out.Fields, other.Fields)
	out.Objects = mergeMaps(out.Objects, other.Objects)
	out.URLs = mergeMaps(out.URLs, other.URLs)
	return out
}

// Replace returns a new Resource for processing a different origin document,
// such as the canonical page behind an AMP variant. URL and Document come
// from other; the current Document is kept only when other has none. The
// article and its reading time are dropped since they describe the previous
// document. Remaining metadata is carried over with values from other
// taking precedence.
func (r *Resource) Replace(other *Resource) *Resource {
	out := r.clone()
	if other == nil {
		return out
	}
	other = other.RemoveNullValues()

	if other.URL != nil {
		out.URL = other.URL
	}
	if other.Document != nil {
		out.Document = other.Document
	}
	out.Article = other.Article
	delete(out.Objects, DurationMs)
	out.Fields = mergeMaps(out.Fields, other.Fields)
	out.Objects = mergeMaps(out.Objects, other.Objects)
	out.URLs = mergeMaps(out.URLs, other.URLs)
	return out
}

// RemoveNullValues returns a copy of r without nil URL or object values.
func (r *Resource) RemoveNullValues() *Resource {
	out := r.clone()
	maps.DeleteFunc(out.URLs, func(_ Field, u *url.URL) bool { return u == nil })
	maps.DeleteFunc(out.Objects, func(_ Field, v any) bool { return v == nil })
	return out
}

// ReadingTime returns the estimated reading time stored under DurationMs.
func (r *Resource) ReadingTime() (time.Duration, bool) {
	if r == nil {
		return 0, false
	}
	ms, ok := r.Objects[DurationMs].(int64)
	if !ok {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

func (r *Resource) clone() *Resource {
	if r == nil {
		return &Resource{}
	}
	return &Resource{
		URL:      r.URL,
		Document: r.Document,
		Fields:   maps.Clone(r.Fields),
		Objects:  maps.Clone(r.Objects),
		URLs:     maps.Clone(r.URLs),
		Article:  r.Article,
	}
}

func mergeMaps[V any](dst, src map[Field]V) map[Field]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[Field]V, len(src))
	}
	maps.Copy(dst, src)
	return dst
}
