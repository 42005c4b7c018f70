package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var footerSelectors = []string{
	"footer a[href]",
	"[role=contentinfo] a[href], #footer a[href], .footer a[href], .site-footer a[href]",
	"a[href]",
}

type FooterLink struct {
	Label string
	URL   string
}

// FooterLinks is a read-only label to URL mapping harvested from the homepage.
// A repeated label keeps its first position and its last URL.
type FooterLinks struct {
	links []FooterLink
	urls  []string
}

func (f FooterLinks) Len() int { return len(f.links) }

// All returns a copy of the label mapping in insertion order.
func (f FooterLinks) All() []FooterLink {
	out := make([]FooterLink, len(f.links))
	copy(out, f.links)
	return out
}

// URLs returns every harvested URL in document order, repeats included.
func (f FooterLinks) URLs() []string {
	out := make([]string, len(f.urls))
	copy(out, f.urls)
	return out
}

// Matching returns the URLs whose label contains any of keywords.
func (f FooterLinks) Matching(keywords ...string) []string {
	var out []string
	for _, l := range f.links {
		for _, k := range keywords {
			if strings.Contains(l.Label, k) {
				out = append(out, l.URL)
				break
			}
		}
	}
	return out
}

// ClassifyFooterLinks builds the footer snapshot for doc. The footer element is
// preferred, then footer-like regions, then every anchor on the page.
func ClassifyFooterLinks(doc *goquery.Document, origin string) FooterLinks {
	base := mustBase(origin)

	chain := make([]strategy[FooterLinks], 0, len(footerSelectors))
	for _, sel := range footerSelectors {
		chain = append(chain, strategy[FooterLinks]{
			name: sel,
			run: func(context.Context) (FooterLinks, bool) {
				links := harvestLinks(doc.Find(sel), func(href string) string { return resolve(base, href) })
				return links, links.Len() > 0
			},
		})
	}

	links, _ := runChain(context.Background(), chain...)
	return links
}

func harvestLinks(anchors *goquery.Selection, resolveHref func(string) string) FooterLinks {
	var (
		out   FooterLinks
		index = make(map[string]int)
	)

	anchors.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u := resolveHref(href)
		if u == "" {
			return
		}
		out.urls = append(out.urls, u)

		label := linkLabel(a)
		if i, ok := index[label]; ok {
			out.links[i].URL = u
			return
		}
		index[label] = len(out.links)
		out.links = append(out.links, FooterLink{Label: label, URL: u})
	})
	return out
}

func linkLabel(a *goquery.Selection) string {
	text := visibleText(a, " ")
	if strings.TrimSpace(text) == "" {
		text = a.AttrOr("aria-label", a.AttrOr("title", ""))
	}
	return normalizeLabel(text)
}

func normalizeLabel(s string) string {
	return strings.ToLower(collapseSpace(norm.NFKC.String(s)))
}
