package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/storelens/storelens/app/brand"
)

func setup(t testing.TB) *BrandRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	return NewBrandRepository(db)
}

func sampleProfile() *brand.Profile {
	return &brand.Profile{
		Name:        "Acme Goods",
		Origin:      "https://acme.test",
		Description: "Handmade mugs",
		Catalog: []brand.Product{
			{
				ID:         1,
				Handle:     "alpha",
				Title:      "Alpha",
				Tags:       []string{"ceramic", "kitchen"},
				PriceRange: map[string]string{"min": "5.00", "max": "9.00"},
				Images:     []string{"https://cdn.test/a.jpg"},
				URL:        "https://acme.test/products/alpha",
			},
			{Handle: "beta", Title: "Beta", URL: "https://acme.test/products/beta"},
		},
		HeroItems: []brand.Product{
			{Handle: "beta", Title: "Beta", URL: "https://acme.test/products/beta"},
		},
		Policies: brand.Policies{
			Privacy: brand.NewPolicy("https://acme.test/policies/privacy-policy", "We protect your data."),
		},
		FAQs: []brand.FAQ{
			{Question: "Do you ship?", Answer: "Yes.", URL: "https://acme.test/pages/faq"},
			{Question: "Returns?", Answer: "30 days."},
		},
		Socials: brand.Socials{brand.PlatformInstagram: "https://instagram.com/acme"},
		Contacts: brand.Contacts{
			Emails: []string{"hello@acme.test"},
			Phones: []string{"+1 (555) 123-4567"},
		},
		About: brand.NewAbout("https://acme.test/pages/about", "Founded in a garage."),
		ImportantLinks: brand.ImportantLinks{
			ContactUs: "https://acme.test/pages/contact",
			Others:    []string{"https://acme.test/pages/contact", "https://acme.test/blogs/news"},
		},
		Meta: brand.Meta{Success: true, Errors: []string{}},
	}
}

func TestUpsertAndFindByOrigin(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	repo.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	id, err := repo.Upsert(ctx, sampleProfile())
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.FindByOrigin(ctx, "https://acme.test")
	require.NoError(t, err)
	require.NotNil(t, got)

	want := sampleProfile()
	want.Meta.RequestedAt = "2024-05-01T10:00:00Z"
	require.Equal(t, want, got)
}

func TestFindByOriginUnknown(t *testing.T) {
	repo := setup(t)

	got, err := repo.FindByOrigin(context.Background(), "https://nobody.test")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpsertReplacesChildren(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, sampleProfile())
	require.NoError(t, err)

	updated := sampleProfile()
	updated.Name = "Acme"
	updated.Catalog = updated.Catalog[:1]
	updated.FAQs = nil
	updated.About = nil
	updated.Policies.Privacy = nil

	second, err := repo.Upsert(ctx, updated)
	require.NoError(t, err)
	require.Equal(t, first, second)

	got, err := repo.FindByOrigin(ctx, "https://acme.test")
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Name)
	require.Len(t, got.Catalog, 1)
	require.Empty(t, got.FAQs)
	require.Nil(t, got.About)
	require.Nil(t, got.Policies.Privacy)

	count, err := repo.GetBrandCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, sampleProfile())
	require.NoError(t, err)
	first, err := repo.FindByOrigin(ctx, "https://acme.test")
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, sampleProfile())
	require.NoError(t, err)
	second, err := repo.FindByOrigin(ctx, "https://acme.test")
	require.NoError(t, err)

	first.Meta.RequestedAt, second.Meta.RequestedAt = "", ""
	require.Equal(t, first, second)
}

func TestUpsertRejectsMissingOrigin(t *testing.T) {
	repo := setup(t)

	_, err := repo.Upsert(context.Background(), &brand.Profile{Name: "No origin"})
	require.Error(t, err)
}

func TestListStale(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, origin := range []string{"https://old.test", "https://older.test", "https://fresh.test"} {
		repo.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		_, err := repo.Upsert(ctx, &brand.Profile{Origin: origin})
		require.NoError(t, err)
	}

	stale, err := repo.ListStale(ctx, base.Add(90*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	require.Equal(t, "https://old.test", stale[0].Website)
	require.Equal(t, "https://older.test", stale[1].Website)
	require.Equal(t, base, stale[0].UpdatedAt)

	limited, err := repo.ListStale(ctx, base.Add(24*time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestCompetitors(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceCompetitors(ctx, "https://acme.test", []string{"https://rival.test"}))
	got, err := repo.ListCompetitors(ctx, "https://acme.test")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = repo.Upsert(ctx, sampleProfile())
	require.NoError(t, err)

	require.NoError(t, repo.ReplaceCompetitors(ctx, "https://acme.test", []string{"https://rival.test", "https://other.test", "https://rival.test"}))
	got, err = repo.ListCompetitors(ctx, "https://acme.test")
	require.NoError(t, err)
	require.Equal(t, []string{"https://rival.test", "https://other.test"}, got)

	_, err = repo.Upsert(ctx, sampleProfile())
	require.NoError(t, err)
	got, err = repo.ListCompetitors(ctx, "https://acme.test")
	require.NoError(t, err)
	require.Len(t, got, 2, "competitors survive a re-scrape")
}

func TestNewConnectionEmptyPath(t *testing.T) {
	_, err := NewConnection("")
	require.Error(t, err)
}
