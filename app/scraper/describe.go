package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/storelens/storelens/app/brand"
)

func pageTitle(doc *goquery.Document) string {
	return brand.Truncate(collapseSpace(doc.Find("title").First().Text()), brand.MaxTitleChars)
}

// describe picks the meta description, then the Open Graph description, then
// a readability excerpt of the homepage.
func describe(doc *goquery.Document, body, origin string) string {
	metaContent := func(selector string) strategy[string] {
		return strategy[string]{
			name: selector,
			run: func(context.Context) (string, bool) {
				v := collapseSpace(doc.Find(selector).First().AttrOr("content", ""))
				return v, v != ""
			},
		}
	}

	desc, _ := runChain(context.Background(),
		metaContent(`meta[name="description"]`),
		metaContent(`meta[property="og:description"]`),
		strategy[string]{name: "readability", run: func(context.Context) (string, bool) {
			article, err := readability.FromReader(strings.NewReader(body), mustBase(origin))
			if err != nil {
				return "", false
			}
			v := collapseSpace(article.Excerpt)
			return v, v != ""
		}},
	)
	return desc
}
