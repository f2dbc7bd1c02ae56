package crux

import (
	"net/url"
	"path"
	"strings"
)

// nonArticleExtensions lists file extensions that are never HTML pages.
var nonArticleExtensions = map[string]bool{
	".7z": true, ".aac": true, ".apk": true, ".avi": true, ".bin": true,
	".bmp": true, ".css": true, ".csv": true, ".dmg": true, ".doc": true,
	".docx": true, ".epub": true, ".exe": true, ".flac": true, ".gif": true,
	".gz": true, ".ico": true, ".iso": true, ".jpeg": true, ".jpg": true,
	".js": true, ".json": true, ".m4a": true, ".m4v": true, ".mkv": true,
	".mov": true, ".mp3": true, ".mp4": true, ".mpeg": true, ".mpg": true,
	".ogg": true, ".pdf": true, ".png": true, ".ppt": true, ".pptx": true,
	".rar": true, ".rss": true, ".svg": true, ".tar": true, ".tgz": true,
	".tif": true, ".tiff": true, ".txt": true, ".wav": true, ".webm": true,
	".webp": true, ".woff": true, ".woff2": true, ".xls": true, ".xlsx": true,
	".xml": true, ".zip": true,
}

// IsLikelyArticle reports whether u plausibly points at an HTML page rather
// than an image, media file, archive or other binary resource. A nil URL is
// treated as a page so raw HTML extractions are not filtered out.
func IsLikelyArticle(u *url.URL) bool {
	if u == nil {
		return true
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return !nonArticleExtensions[ext]
}

// UnwrapRedirect returns the destination of well-known redirector links
// (Google search results, Facebook outbound links). Other URLs are returned
// unchanged.
func UnwrapRedirect(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	var param string
	switch {
	case (host == "google.com" || strings.HasPrefix(host, "google.")) && u.Path == "/url":
		param = "q"
		if u.Query().Get(param) == "" {
			param = "url"
		}
	case (host == "l.facebook.com" || host == "lm.facebook.com") && u.Path == "/l.php":
		param = "u"
	default:
		return u
	}

	target, err := url.Parse(u.Query().Get(param))
	if err != nil || !target.IsAbs() {
		return u
	}
	return target
}

// ResolveURL resolves href against base. With a nil base only absolute
// http(s) URLs are accepted. Blank or unparsable values return nil.
func ResolveURL(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if !ref.IsAbs() || (ref.Scheme != "http" && ref.Scheme != "https") {
		return nil
	}
	return ref
}
