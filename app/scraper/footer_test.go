package scraper

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassifyFooterLinksPrefersFooter(t *testing.T) {
	doc := mustDocument(t, `<html><body>
		<nav><a href="/pages/contact-nav">Contact</a></nav>
		<footer>
			<a href="/pages/contact">Contact Us</a>
			<a href="https://instagram.com/acme">Instagram</a>
			<a href="/pages/contact-2">CONTACT
				us</a>
			<a href="#top">Back to top</a>
		</footer>
	</body></html>`)

	links := ClassifyFooterLinks(doc, "https://shop.test")

	want := []FooterLink{
		{Label: "contact us", URL: "https://shop.test/pages/contact-2"},
		{Label: "instagram", URL: "https://instagram.com/acme"},
	}
	if diff := cmp.Diff(want, links.All()); diff != "" {
		t.Errorf("footer links mismatch (-want +got):\n%s", diff)
	}

	wantURLs := []string{
		"https://shop.test/pages/contact",
		"https://instagram.com/acme",
		"https://shop.test/pages/contact-2",
	}
	if diff := cmp.Diff(wantURLs, links.URLs()); diff != "" {
		t.Errorf("footer URLs mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyFooterLinksFallbacks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []FooterLink
	}{
		{
			name: "footer-like region",
			html: `<div class="site-footer"><a href="/pages/faq">FAQ</a></div><a href="/outside">Outside</a>`,
			want: []FooterLink{{Label: "faq", URL: "https://shop.test/pages/faq"}},
		},
		{
			name: "content info role",
			html: `<div role="contentinfo"><a href="/blogs/news">Blog</a></div>`,
			want: []FooterLink{{Label: "blog", URL: "https://shop.test/blogs/news"}},
		},
		{
			name: "every anchor",
			html: `<a href="/pages/about">About</a><a href="/pages/help">Help</a>`,
			want: []FooterLink{
				{Label: "about", URL: "https://shop.test/pages/about"},
				{Label: "help", URL: "https://shop.test/pages/help"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := ClassifyFooterLinks(mustDocument(t, tt.html), "https://shop.test")
			if diff := cmp.Diff(tt.want, links.All()); diff != "" {
				t.Errorf("footer links mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyFooterLinksLabels(t *testing.T) {
	doc := mustDocument(t, `<footer>
		<a href="/pages/faq">Ｆａｑ</a>
		<a href="https://www.facebook.com/acme" aria-label="Facebook"><svg></svg></a>
	</footer>`)

	links := ClassifyFooterLinks(doc, "https://shop.test")

	if got := links.Matching("faq"); len(got) != 1 || got[0] != "https://shop.test/pages/faq" {
		t.Errorf("Expected full-width label to normalise to faq, got %v", got)
	}
	if got := links.Matching("facebook"); len(got) != 1 {
		t.Errorf("Expected aria-label fallback to be used, got %v", got)
	}
}

func TestFooterLinksIsSnapshot(t *testing.T) {
	links := ClassifyFooterLinks(mustDocument(t, `<footer><a href="/a">A</a></footer>`), "https://shop.test")

	all := links.All()
	all[0].URL = "https://evil.test"

	if links.All()[0].URL != "https://shop.test/a" {
		t.Error("Expected All to return a copy")
	}
}

func TestFooterLinksMatching(t *testing.T) {
	links := ClassifyFooterLinks(mustDocument(t, `<footer>
		<a href="/pages/faq">FAQ</a>
		<a href="/pages/help-center">Help Center</a>
		<a href="/pages/support">Customer Support</a>
		<a href="/pages/about">About</a>
	</footer>`), "https://shop.test")

	want := []string{
		"https://shop.test/pages/faq",
		"https://shop.test/pages/help-center",
		"https://shop.test/pages/support",
	}
	if diff := cmp.Diff(want, links.Matching("faq", "help", "support")); diff != "" {
		t.Errorf("Matching mismatch (-want +got):\n%s", diff)
	}
}
