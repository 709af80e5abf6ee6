package content

import "regexp"

// imgSrcPattern matches the src attribute of the first <img> tag. It is a
// best-effort scan, not an HTML parser, and may mis-extract on hostile markup.
var imgSrcPattern = regexp.MustCompile(`(?i)<img\b[^>]*?\ssrc\s*=\s*["']([^"']+)["']`)

// FirstImageURL returns the src of the first image tag in markup, or "".
func FirstImageURL(markup string) string {
	m := imgSrcPattern.FindStringSubmatch(markup)
	if m == nil {
		return ""
	}
	return m[1]
}

// ResolveThumbnail picks the first non-empty structured candidate, then the
// first image in body, then FallbackThumbnail. The result is never empty.
func ResolveThumbnail(body string, candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	if u := FirstImageURL(body); u != "" {
		return u
	}
	return FallbackThumbnail
}
