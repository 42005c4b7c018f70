package scraper

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/storelens/storelens/app/brand"
)

var longText = strings.Repeat("We respect your privacy and protect your data. ", 5)

func TestPolicyPrefersConventionalPath(t *testing.T) {
	srv := newStorefront(t, map[string]string{
		"/policies/privacy-policy": "<html><body><p>Conventional. " + longText + "</p></body></html>",
		"/legal/privacy":           "<html><body><p>Footer. " + longText + "</p></body></html>",
	})
	home := mustDocument(t, `<footer><a href="/legal/privacy">Privacy Policy</a></footer>`)

	r := newTestRun(srv.URL, ClassifyFooterLinks(home, srv.URL))
	p := r.privacyPolicy(context.Background())

	if p == nil {
		t.Fatal("Expected privacy policy to be found")
	}
	if p.URL != srv.URL+"/policies/privacy-policy" {
		t.Errorf("Expected conventional path to win, got %q", p.URL)
	}
	if srv.requested("/legal/privacy") != 0 {
		t.Error("Expected later candidates not to be fetched")
	}
}

func TestPolicyFallsBackToFooterLink(t *testing.T) {
	srv := newStorefront(t, map[string]string{
		"/pages/privacy": "<html><body><p>Too short</p></body></html>",
		"/legal/privacy": "<html><body><p>" + longText + "</p></body></html>",
	})
	home := mustDocument(t, `<footer><a href="/legal/privacy">Privacy Policy</a></footer>`)

	p := newTestRun(srv.URL, ClassifyFooterLinks(home, srv.URL)).privacyPolicy(context.Background())

	if p == nil || p.URL != srv.URL+"/legal/privacy" {
		t.Fatalf("Expected footer candidate to be accepted, got %+v", p)
	}
}

func TestPolicyContentIsCapped(t *testing.T) {
	srv := newStorefront(t, map[string]string{
		"/policies/privacy-policy": "<html><body><p>" + strings.Repeat("a", 20000) + "</p></body></html>",
	})

	p := newTestRun(srv.URL, FooterLinks{}).privacyPolicy(context.Background())
	if p == nil {
		t.Fatal("Expected privacy policy to be found")
	}
	if got := utf8.RuneCountInString(p.Content); got != brand.MaxContentChars {
		t.Errorf("Expected content of %d characters, got %d", brand.MaxContentChars, got)
	}
}

func TestPolicyIgnoresScriptText(t *testing.T) {
	srv := newStorefront(t, map[string]string{
		"/policies/privacy-policy": "<html><body><script>" + longText + "</script><p>Short</p></body></html>",
	})

	if p := newTestRun(srv.URL, FooterLinks{}).privacyPolicy(context.Background()); p != nil {
		t.Errorf("Expected script text not to count as content, got %+v", p)
	}
}

func TestReturnPolicyTriesRefundFirst(t *testing.T) {
	srv := newStorefront(t, map[string]string{
		"/policies/refund-policy": "<html><body><p>Refund. " + longText + "</p></body></html>",
		"/policies/return-policy": "<html><body><p>Return. " + longText + "</p></body></html>",
	})

	p := newTestRun(srv.URL, FooterLinks{}).returnPolicy(context.Background())
	if p == nil || p.URL != srv.URL+"/policies/refund-policy" {
		t.Fatalf("Expected refund policy, got %+v", p)
	}
	if srv.requested("/policies/return-policy") != 0 {
		t.Error("Expected return policy not to be probed once refund qualified")
	}
}

func TestReturnPolicyFallsBackToReturn(t *testing.T) {
	srv := newStorefront(t, map[string]string{
		"/pages/return": "<html><body><p>" + longText + "</p></body></html>",
	})

	p := newTestRun(srv.URL, FooterLinks{}).returnPolicy(context.Background())
	if p == nil || p.URL != srv.URL+"/pages/return" {
		t.Fatalf("Expected return page, got %+v", p)
	}
}

func TestAbout(t *testing.T) {
	srv := newStorefront(t, map[string]string{
		"/our-story": "<html><body><h1>Our story</h1><p>" + longText + "</p></body></html>",
	})
	home := mustDocument(t, `<footer><a href="/our-story">About the brand</a></footer>`)

	a := newTestRun(srv.URL, ClassifyFooterLinks(home, srv.URL)).about(context.Background())
	if a == nil || a.URL != srv.URL+"/our-story" {
		t.Fatalf("Expected about page from footer, got %+v", a)
	}
	if !strings.HasPrefix(a.Content, "Our story\n") {
		t.Errorf("Expected newline separated visible text, got %q", a.Content[:20])
	}
}

func TestAboutMissingIsNotAnError(t *testing.T) {
	srv := newStorefront(t, map[string]string{})

	if a := newTestRun(srv.URL, FooterLinks{}).about(context.Background()); a != nil {
		t.Errorf("Expected no about page, got %+v", a)
	}
}
