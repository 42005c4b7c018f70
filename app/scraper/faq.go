package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/storelens/storelens/app/brand"
)

// maxQuestionChars bounds questions taken from headings.
const maxQuestionChars = 220

var faqPaths = []string{
	"/pages/faq",
	"/pages/faqs",
	"/pages/help",
	"/pages/support",
	"/apps/help-center",
	"/policies/faq",
}

var headingElements = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

func (r *run) faqs(ctx context.Context) []brand.FAQ {
	set := brand.NewFAQSet()

	for _, u := range r.candidates(faqPaths, "faq", "help", "support") {
		if ctx.Err() != nil || set.Full() {
			break
		}
		page, err := r.fetcher.Text(ctx, u)
		if err != nil {
			r.note("faq", err.Error())
			continue
		}
		doc, err := parseDocument(page.Body)
		if err != nil {
			r.note("faq", err.Error())
			continue
		}
		for _, f := range ExtractFAQs(doc, u) {
			set.Add(f)
		}
	}

	if set.Len() == 0 {
		r.note("faq", "no entries found")
	}
	return set.Items()
}

// ExtractFAQs pools the entries found by the definition list, heading and
// disclosure extractors, in that order. Entries are not deduplicated.
func ExtractFAQs(doc *goquery.Document, url string) []brand.FAQ {
	var out []brand.FAQ
	out = append(out, definitionListFAQs(doc, url)...)
	out = append(out, headingFAQs(doc, url)...)
	out = append(out, disclosureFAQs(doc, url)...)
	return out
}

func definitionListFAQs(doc *goquery.Document, url string) []brand.FAQ {
	var out []brand.FAQ
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		q := visibleText(dt, " ")
		a := visibleText(dt.NextAllFiltered("dd").First(), " ")
		if q != "" && a != "" {
			out = append(out, brand.NewFAQ(q, a, url, brand.MaxContentChars))
		}
	})
	return out
}

func headingFAQs(doc *goquery.Document, url string) []brand.FAQ {
	var out []brand.FAQ
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		q := visibleText(h, " ")
		if q == "" || textLen(q) >= maxQuestionChars {
			return
		}

		var parts []string
		for sib := h.Nodes[0].NextSibling; sib != nil; sib = sib.NextSibling {
			if sib.Type == html.ElementNode && headingElements[sib.DataAtom] {
				break
			}
			if t := nodeText(sib, " "); t != "" {
				parts = append(parts, t)
			}
		}
		a := strings.TrimSpace(strings.Join(parts, " "))
		if a != "" {
			out = append(out, brand.NewFAQ(q, a, url, brand.MaxFAQAnswerChars))
		}
	})
	return out
}

func disclosureFAQs(doc *goquery.Document, url string) []brand.FAQ {
	var out []brand.FAQ
	doc.Find("details").Each(func(_ int, det *goquery.Selection) {
		summary := det.Find("summary").First()
		if summary.Length() == 0 {
			return
		}
		q := visibleText(summary, " ")
		a := strings.TrimSpace(strings.Replace(visibleText(det, " "), q, "", 1))
		if q != "" && a != "" {
			out = append(out, brand.NewFAQ(q, a, url, brand.MaxFAQAnswerChars))
		}
	})
	return out
}
