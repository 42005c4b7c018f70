package scraper

import "testing"

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com/foo?x=1", "https://example.com"},
		{"  example.com  ", "https://example.com"},
		{"http://example.com/collections/all#top", "http://example.com"},
		{"https://Shop.Example.COM/", "https://shop.example.com"},
		{"HTTPS://example.com", "https://example.com"},
		{"https://example.com:443/pages/faq", "https://example.com"},
		{"http://localhost:8080/x", "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeOrigin(tt.in); got != tt.want {
				t.Errorf("NormalizeOrigin(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeOriginNeverPanics(t *testing.T) {
	for _, in := range []string{"", "://", "%%%", "https://exa mple.com"} {
		_ = NormalizeOrigin(in)
	}
}
