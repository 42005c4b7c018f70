package scraper

import (
	"time"

	"github.com/storelens/storelens/app/brand"
)

// Parts are the stage results of one run.
type Parts struct {
	Origin         string
	Name           string
	Description    string
	Catalog        []brand.Product
	Hero           []brand.Product
	Privacy        *brand.Policy
	Return         *brand.Policy
	About          *brand.About
	FAQs           []brand.FAQ
	Socials        brand.Socials
	Contacts       brand.Contacts
	ImportantLinks brand.ImportantLinks
}

// Aggregate composes parts into a profile stamped at now. It performs no I/O.
// It is only reached after the homepage was fetched, so the profile is always
// marked successful with no errors.
func Aggregate(parts Parts, now time.Time) *brand.Profile {
	p := &brand.Profile{
		Name:        parts.Name,
		Origin:      parts.Origin,
		Description: brand.Truncate(parts.Description, brand.MaxDescription),
		Catalog:     orEmpty(parts.Catalog),
		HeroItems:   orEmpty(parts.Hero),
		Policies: brand.Policies{
			Privacy: parts.Privacy,
			Return:  parts.Return,
		},
		FAQs:           orEmpty(parts.FAQs),
		Socials:        parts.Socials,
		Contacts:       parts.Contacts,
		About:          parts.About,
		ImportantLinks: parts.ImportantLinks,
		Meta: brand.Meta{
			RequestedAt: now.UTC().Format(time.RFC3339),
			Success:     true,
			Errors:      []string{},
		},
	}

	if p.Socials == nil {
		p.Socials = brand.Socials{}
	}
	p.Contacts.Emails = orEmpty(p.Contacts.Emails)
	p.Contacts.Phones = orEmpty(p.Contacts.Phones)
	p.ImportantLinks.Others = orEmpty(p.ImportantLinks.Others)

	return p
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
