package scraper

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/storelens/storelens/app/brand"
)

const (
	feedPath    = "/products.json?limit=250"
	listingPath = "/collections/all"
	atomPath    = "/collections/all.atom"

	productAnchorSelector = "a[href*='/products/']"
)

var productHandleRe = regexp.MustCompile(`/products/([a-zA-Z0-9\-\._]+)`)

type feedResponse struct {
	Products []feedProduct `json:"products"`
}

type feedProduct struct {
	ID          int64           `json:"id"`
	Handle      string          `json:"handle"`
	Title       string          `json:"title"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
	Tags        json.RawMessage `json:"tags"`
	Images      []struct {
		Src string `json:"src"`
	} `json:"images"`
	Variants []struct {
		Price any `json:"price"`
	} `json:"variants"`
}

// catalog runs the feed, listing and Atom strategies in that order.
func (r *run) catalog(ctx context.Context) []brand.Product {
	products, used := runChain(ctx,
		strategy[[]brand.Product]{name: "feed", run: r.catalogFromFeed},
		strategy[[]brand.Product]{name: "listing", run: r.catalogFromListing},
		strategy[[]brand.Product]{name: "atom", run: r.catalogFromAtom},
	)
	if used == "" {
		r.note("catalog", "no strategy produced products")
		return nil
	}
	r.note("catalog", "resolved via "+used)
	return products
}

func (r *run) catalogFromFeed(ctx context.Context) ([]brand.Product, bool) {
	var resp feedResponse
	if _, err := r.fetcher.JSON(ctx, r.origin+feedPath, &resp); err != nil {
		r.note("catalog", err.Error())
		return nil, false
	}

	products := make([]brand.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, r.productFromFeed(p))
	}
	return products, len(products) > 0
}

func (r *run) productFromFeed(p feedProduct) brand.Product {
	product := brand.Product{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       capTitle(p.Title),
		Vendor:      capTitle(p.Vendor),
		ProductType: capTitle(p.ProductType),
		Tags:        parseTags(p.Tags),
	}

	for _, img := range p.Images {
		if src := resolve(r.base, img.Src); src != "" {
			product.Images = append(product.Images, src)
		}
	}

	prices := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		prices = append(prices, priceString(v.Price))
	}
	product.PriceRange = priceRange(prices)

	if p.Handle != "" {
		product.URL = productURL(r.origin, p.Handle)
	}
	return product
}

// parseTags accepts either a comma separated string or a list of strings.
func parseTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return brand.UniqueStrings(trimAll(list))
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return brand.UniqueStrings(trimAll(strings.Split(joined, ",")))
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func priceString(v any) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	}
	return ""
}

// priceRange returns the lowest and highest parseable variant prices, keeping
// each price as the store wrote it.
func priceRange(prices []string) map[string]string {
	var (
		minText, maxText string
		minVal, maxVal   float64
		found            bool
	)
	for _, p := range prices {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			continue
		}
		if !found || v < minVal {
			minVal, minText = v, p
		}
		if !found || v > maxVal {
			maxVal, maxText = v, p
		}
		found = true
	}
	if !found {
		return nil
	}
	return map[string]string{"min": minText, "max": maxText}
}

func (r *run) catalogFromListing(ctx context.Context) ([]brand.Product, bool) {
	page, err := r.fetcher.Text(ctx, r.origin+listingPath)
	if err != nil {
		r.note("catalog", err.Error())
		return nil, false
	}
	doc, err := parseDocument(page.Body)
	if err != nil {
		r.note("catalog", err.Error())
		return nil, false
	}

	products := productsFromAnchors(doc.Find(productAnchorSelector), r.base, r.origin)
	return products, len(products) > 0
}

func (r *run) catalogFromAtom(ctx context.Context) ([]brand.Product, bool) {
	page, err := r.fetcher.Text(ctx, r.origin+atomPath)
	if err != nil {
		r.note("catalog", err.Error())
		return nil, false
	}

	feed, err := gofeed.NewParser().ParseString(page.Body)
	if err != nil {
		r.note("catalog", "failed to parse atom feed: "+err.Error())
		return nil, false
	}

	seen := make(map[string]struct{}, len(feed.Items))
	products := make([]brand.Product, 0, len(feed.Items))
	for _, item := range feed.Items {
		m := productHandleRe.FindStringSubmatch(item.Link)
		if m == nil {
			continue
		}
		handle := m[1]
		if _, ok := seen[handle]; ok {
			continue
		}
		seen[handle] = struct{}{}

		product := brand.Product{
			Handle:      handle,
			Title:       capTitle(item.Title),
			Vendor:      capTitle(shopifyExtension(item, "vendor")),
			ProductType: capTitle(shopifyExtension(item, "type")),
			Tags:        brand.UniqueStrings(trimAll(item.Categories)),
			URL:         productURL(r.origin, handle),
		}
		if src := atomImage(item, r.base); src != "" {
			product.Images = []string{src}
		}
		products = append(products, product)
	}
	return products, len(products) > 0
}

// shopifyExtension reads an <s:name> element from a storefront Atom entry.
func shopifyExtension(item *gofeed.Item, name string) string {
	values := item.Extensions["s"][name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

func atomImage(item *gofeed.Item, base *url.URL) string {
	if item.Image != nil && item.Image.URL != "" {
		return resolve(base, item.Image.URL)
	}
	for _, body := range []string{item.Content, item.Description} {
		if body == "" {
			continue
		}
		doc, err := parseDocument(body)
		if err != nil {
			continue
		}
		if src, ok := doc.Find("img[src]").First().Attr("src"); ok {
			return resolve(base, src)
		}
	}
	return ""
}

// heroProducts samples featured products from the first anchors of the
// homepage document.
func heroProducts(doc *goquery.Document, origin string) []brand.Product {
	anchors := doc.Find(productAnchorSelector)
	if anchors.Length() > brand.MaxHeroAnchors {
		anchors = anchors.Slice(0, brand.MaxHeroAnchors)
	}
	return productsFromAnchors(anchors, mustBase(origin), origin)
}

// productsFromAnchors extracts one product per distinct handle, in document order.
func productsFromAnchors(anchors *goquery.Selection, base *url.URL, origin string) []brand.Product {
	seen := make(map[string]struct{})
	var products []brand.Product

	anchors.Each(func(_ int, a *goquery.Selection) {
		product, ok := productFromAnchor(a, base, origin)
		if !ok {
			return
		}
		if _, dup := seen[product.Handle]; dup {
			return
		}
		seen[product.Handle] = struct{}{}
		products = append(products, product)
	})
	return products
}

func productFromAnchor(a *goquery.Selection, base *url.URL, origin string) (brand.Product, bool) {
	href, _ := a.Attr("href")
	m := productHandleRe.FindStringSubmatch(href)
	if m == nil {
		return brand.Product{}, false
	}

	product := brand.Product{
		Handle: m[1],
		URL:    productURL(origin, m[1]),
	}

	title, _ := a.Attr("title")
	if title = collapseSpace(title); title == "" {
		title = collapseSpace(visibleText(a, " "))
	}
	product.Title = capTitle(title)

	img := a.Find("img").First()
	src, ok := img.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		src, _ = img.Attr("data-src")
	}
	if abs := resolve(base, src); abs != "" {
		product.Images = []string{abs}
	}
	return product, true
}

func capTitle(s string) string {
	return brand.Truncate(strings.TrimSpace(s), brand.MaxTitleChars)
}

func productURL(origin, handle string) string {
	return origin + "/products/" + handle
}
