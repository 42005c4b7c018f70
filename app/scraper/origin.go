package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

const originFlags = purell.FlagLowercaseScheme | purell.FlagLowercaseHost | purell.FlagRemoveDefaultPort

// NormalizeOrigin reduces raw user input to scheme and host. Input without an
// http(s) scheme is treated as https. It never fails: malformed input yields a
// best-effort string that later fetches will simply fail against.
func NormalizeOrigin(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return strings.TrimRight(s, "/")
	}

	origin := &url.URL{Scheme: u.Scheme, Host: u.Host}
	return strings.TrimRight(purell.NormalizeURL(origin, originFlags), "/")
}
