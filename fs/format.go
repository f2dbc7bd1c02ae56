// Package fs writes extracted pages to disk as Markdown files with YAML
// frontmatter.
package fs

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/crux"
	"gopkg.in/yaml.v3"
)

// Frontmatter is the metadata header written above each page.
type Frontmatter struct {
	Source      string `yaml:"source"`
	Canonical   string `yaml:"canonical,omitempty"`
	Title       string `yaml:"title,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Description string `yaml:"description,omitempty"`
	Site        string `yaml:"site,omitempty"`
	Image       string `yaml:"image,omitempty"`
	ReadingTime string `yaml:"reading_time,omitempty"`
	Extracted   string `yaml:"extracted"`
}

// NewFrontmatter collects the metadata of r.
func NewFrontmatter(r *crux.Resource, extracted time.Time) Frontmatter {
	fm := Frontmatter{
		Canonical:   r.Fields[crux.CanonicalURL],
		Title:       r.Fields[crux.Title],
		Author:      r.Fields[crux.Author],
		Description: r.Fields[crux.Description],
		Site:        r.Fields[crux.SiteName],
		Extracted:   extracted.Format("2006-01-02"),
	}
	if r.URL != nil {
		fm.Source = r.URL.String()
	}
	if u := r.URLs[crux.BannerImageURL]; u != nil {
		fm.Image = u.String()
	}
	if d, ok := r.ReadingTime(); ok {
		fm.ReadingTime = d.Round(time.Second).String()
	}
	return fm
}

// FormatResource renders r as Markdown with YAML frontmatter. The body is
// the converted article, or the description when no article was found.
func FormatResource(r *crux.Resource, extracted time.Time) (string, error) {
	header, err := yaml.Marshal(NewFrontmatter(r, extracted))
	if err != nil {
		return "", crux.WrapError(crux.EINTERNAL, err, "marshal frontmatter")
	}

	body := r.Fields[crux.Markdown]
	if body == "" {
		body = r.Fields[crux.Description]
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}

// URLToPath converts a page URL to a relative file path under its host.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", crux.WrapError(crux.EINVALID, err, "invalid url %q", rawURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", crux.Errorf(crux.EINVALID, "url has no host: %q", rawURL)
	}

	p := strings.TrimPrefix(u.Path, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." {
			return "", crux.Errorf(crux.EINVALID, "path traversal in %q", rawURL)
		}
	}
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".htm", ".md":
		p = strings.TrimSuffix(p, path.Ext(p))
	}
	return host + path.Clean("/"+p) + ".md", nil
}
