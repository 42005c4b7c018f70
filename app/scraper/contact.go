package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/storelens/storelens/app/brand"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-\(\)]{7,}\d`)
)

// socialDomains is checked in order; the first domain matching the host or one
// of its parent domains wins.
var socialDomains = []struct {
	domain   string
	platform string
}{
	{"instagram.com", brand.PlatformInstagram},
	{"facebook.com", brand.PlatformFacebook},
	{"fb.com", brand.PlatformFacebook},
	{"tiktok.com", brand.PlatformTikTok},
	{"youtube.com", brand.PlatformYouTube},
	{"youtu.be", brand.PlatformYouTube},
	{"twitter.com", brand.PlatformTwitter},
	{"x.com", brand.PlatformX},
	{"linkedin.com", brand.PlatformLinkedIn},
	{"pinterest.com", brand.PlatformPinterest},
}

// ExtractContacts finds email addresses and phone numbers in text, keeping the
// first occurrence of each.
func ExtractContacts(text string) brand.Contacts {
	emails := emailRe.FindAllString(text, -1)
	for i, e := range emails {
		emails[i] = strings.TrimRight(e, ".")
	}
	return brand.Contacts{
		Emails: brand.UniqueStrings(emails),
		Phones: brand.UniqueStrings(phoneRe.FindAllString(text, -1)),
	}
}

// ClassifySocial returns the platform rawURL belongs to, or "".
func ClassifySocial(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	for _, d := range socialDomains {
		if host == d.domain || strings.HasSuffix(host, "."+d.domain) {
			return d.platform
		}
	}
	return ""
}

func socials(footer FooterLinks) brand.Socials {
	out := brand.Socials{}
	for _, l := range footer.All() {
		if platform := ClassifySocial(l.URL); platform != "" {
			out[platform] = l.URL
		}
	}
	return out
}

// sameOriginLinks lists every homepage anchor that stays on origin.
func sameOriginLinks(doc *goquery.Document, origin string) []string {
	base := mustBase(origin)
	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		u := resolve(base, a.AttrOr("href", ""))
		if u != "" && (u == origin || strings.HasPrefix(u, origin+"/")) {
			out = append(out, u)
		}
	})
	return out
}

func importantLinks(footer FooterLinks, pageLinks []string) brand.ImportantLinks {
	var links brand.ImportantLinks
	for _, l := range footer.All() {
		if strings.Contains(l.Label, "track") {
			links.OrderTracking = l.URL
		}
		if strings.Contains(l.Label, "contact") {
			links.ContactUs = l.URL
		}
		if strings.Contains(l.Label, "blog") {
			links.Blogs = l.URL
		}
	}

	others := append(footer.URLs(), pageLinks...)
	links.Others = brand.CapStrings(brand.UniqueStrings(others), brand.MaxOtherLinks)
	return links
}
