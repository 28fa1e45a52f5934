package render

import (
	"net/url"
	"strings"
)

// URLHasExtension reports whether the URL path ends with ext, ignoring any
// query string or fragment. Comparison is case-insensitive and exact: ".jpg"
// does not match a ".jpeg" path.
func URLHasExtension(rawURL, ext string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); nil == err && u.Path != "" {
		p = u.Path
	} else {
		if i := strings.IndexByte(p, '?'); i >= 0 {
			p = p[:i]
		}
		if i := strings.IndexByte(p, '#'); i >= 0 {
			p = p[:i]
		}
	}
	return strings.HasSuffix(strings.ToLower(p), strings.ToLower(ext))
}
