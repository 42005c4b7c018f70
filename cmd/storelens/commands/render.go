package commands

import (
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/storelens/storelens/app/brand"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func renderProfile(p *brand.Profile) {
	t := newTable()
	t.SetTitle(p.Origin)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Name", p.Name},
		{"Description", brand.Truncate(p.Description, 80)},
		{"Products", len(p.Catalog)},
		{"Hero products", len(p.HeroItems)},
		{"FAQs", len(p.FAQs)},
		{"Privacy policy", policyURL(p.Policies.Privacy)},
		{"Return policy", policyURL(p.Policies.Return)},
		{"About", aboutURL(p.About)},
		{"Emails", strings.Join(p.Contacts.Emails, ", ")},
		{"Phones", strings.Join(p.Contacts.Phones, ", ")},
		{"Order tracking", p.ImportantLinks.OrderTracking},
		{"Contact us", p.ImportantLinks.ContactUs},
		{"Blogs", p.ImportantLinks.Blogs},
		{"Requested at", p.Meta.RequestedAt},
	})
	t.Render()

	if len(p.Socials) == 0 {
		return
	}
	platforms := make([]string, 0, len(p.Socials))
	for platform := range p.Socials {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	s := newTable()
	s.AppendHeader(table.Row{"Platform", "URL"})
	for _, platform := range platforms {
		s.AppendRow(table.Row{platform, p.Socials[platform]})
	}
	s.Render()
}

func policyURL(p *brand.Policy) string {
	if p == nil {
		return "-"
	}
	return p.URL
}

func aboutURL(a *brand.About) string {
	if a == nil {
		return "-"
	}
	return a.URL
}
