package importer

import (
	"net/url"
	"strings"
)

// NormalizeURL produces the canonical duplicate-detection key for a URL:
// scheme and host are lowercased and a single trailing slash is dropped (a
// bare "/" path becomes empty). Path case, query and fragment are preserved.
// The function is idempotent; unparseable input is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "/" {
		u.Path = ""
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}
