package scraper

import (
	"context"
	"fmt"

	"github.com/storelens/storelens/app/brand"
)

var aboutPaths = []string{"/pages/about-us", "/pages/about", "/about", "/about-us"}

func policyPaths(kind string) []string {
	return []string{
		fmt.Sprintf("/policies/%s-policy", kind),
		fmt.Sprintf("/pages/%s-policy", kind),
		fmt.Sprintf("/pages/%s", kind),
	}
}

// candidates resolves paths against the origin and appends the footer matches,
// dropping repeats.
func (r *run) candidates(paths []string, keywords ...string) []string {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		urls = append(urls, r.origin+p)
	}
	urls = append(urls, r.footer.Matching(keywords...)...)
	return brand.UniqueStrings(urls)
}

// probe fetches candidates in order and returns the first page whose visible
// text is longer than minContentChars.
func (r *run) probe(ctx context.Context, stage string, candidates []string) (url, text string, ok bool) {
	for _, u := range candidates {
		if ctx.Err() != nil {
			return "", "", false
		}
		page, err := r.fetcher.Text(ctx, u)
		if err != nil {
			r.note(stage, err.Error())
			continue
		}
		doc, err := parseDocument(page.Body)
		if err != nil {
			r.note(stage, err.Error())
			continue
		}
		text := visibleText(doc.Selection, "\n")
		if textLen(text) > minContentChars {
			return u, text, true
		}
	}
	return "", "", false
}

func (r *run) policy(ctx context.Context, kind string) (*brand.Policy, bool) {
	stage := kind + " policy"
	u, text, ok := r.probe(ctx, stage, r.candidates(policyPaths(kind), kind))
	if !ok {
		return nil, false
	}
	return brand.NewPolicy(u, text), true
}

func (r *run) privacyPolicy(ctx context.Context) *brand.Policy {
	p, ok := r.policy(ctx, "privacy")
	if !ok {
		r.note("privacy policy", "no candidate qualified")
	}
	return p
}

// returnPolicy looks for a refund policy first and a return policy second.
func (r *run) returnPolicy(ctx context.Context) *brand.Policy {
	p, used := runChain(ctx,
		strategy[*brand.Policy]{name: "refund", run: func(ctx context.Context) (*brand.Policy, bool) { return r.policy(ctx, "refund") }},
		strategy[*brand.Policy]{name: "return", run: func(ctx context.Context) (*brand.Policy, bool) { return r.policy(ctx, "return") }},
	)
	if used == "" {
		r.note("return policy", "no candidate qualified")
	}
	return p
}

func (r *run) about(ctx context.Context) *brand.About {
	u, text, ok := r.probe(ctx, "about", r.candidates(aboutPaths, "about"))
	if !ok {
		r.note("about", "no candidate qualified")
		return nil
	}
	return brand.NewAbout(u, text)
}
