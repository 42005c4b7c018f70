package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/storelens/storelens/app/brand"
)

// childTables are cleared on every upsert. competitors is owned by
// ReplaceCompetitors and survives re-scrapes.
var childTables = []string{"products", "faqs", "policies", "socials", "contacts", "links", "about"}

// BrandRepository handles database operations for brands and their child rows
type BrandRepository struct {
	db  *DB
	now func() time.Time
}

var _ BrandRepositoryInterface = (*BrandRepository)(nil)

// NewBrandRepository creates a new brand repository
func NewBrandRepository(db *DB) *BrandRepository {
	return &BrandRepository{db: db, now: time.Now}
}

// Upsert locates or creates the brand by origin and replaces all of its child
// rows in one transaction. Busy database errors are retried.
func (r *BrandRepository) Upsert(ctx context.Context, profile *brand.Profile) (int64, error) {
	if profile == nil || profile.Origin == "" {
		return 0, fmt.Errorf("profile has no origin")
	}

	id, err := retry.DoWithData(
		func() (int64, error) {
			return r.upsert(ctx, profile)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.MaxJitter(50*time.Millisecond),
		retry.RetryIf(isBusy),
		retry.OnRetry(func(n uint, err error) {
			slog.Debug("Retrying brand upsert", "website", profile.Origin, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert brand: %w", err)
	}

	return id, nil
}

func (r *BrandRepository) upsert(ctx context.Context, p *brand.Profile) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := formatTime(r.now())

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO brands (website, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(website) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = excluded.updated_at
		RETURNING id
	`, p.Origin, nullString(p.Name), nullString(p.Description), now, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save brand: %w", err)
	}

	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE brand_id = ?", id); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertProducts(ctx, tx, id, p.Catalog, false); err != nil {
		return 0, err
	}
	if err := insertProducts(ctx, tx, id, p.HeroItems, true); err != nil {
		return 0, err
	}
	if err := insertFAQs(ctx, tx, id, p.FAQs); err != nil {
		return 0, err
	}
	if err := insertPolicies(ctx, tx, id, p.Policies); err != nil {
		return 0, err
	}
	if err := insertSocials(ctx, tx, id, p.Socials); err != nil {
		return 0, err
	}
	if err := insertContacts(ctx, tx, id, p.Contacts); err != nil {
		return 0, err
	}
	if err := insertLinks(ctx, tx, id, p.ImportantLinks); err != nil {
		return 0, err
	}
	if p.About != nil {
		if _, err := tx.ExecContext(ctx, `INSERT INTO about (brand_id, url, content) VALUES (?, ?, ?)`,
			id, nullString(p.About.URL), nullString(p.About.Content)); err != nil {
			return 0, fmt.Errorf("failed to insert about: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

func insertProducts(ctx context.Context, tx *sql.Tx, brandID int64, products []brand.Product, featured bool) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (
			brand_id, position, featured, external_id, handle, title, vendor,
			product_type, tags, price_range, images_json, url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range products {
		var externalID any
		if p.ID != 0 {
			externalID = p.ID
		}
		priceRange, err := jsonColumn(p.PriceRange, len(p.PriceRange) > 0)
		if err != nil {
			return err
		}
		images, err := jsonColumn(p.Images, len(p.Images) > 0)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx, brandID, i, featured, externalID,
			nullString(p.Handle), nullString(p.Title), nullString(p.Vendor), nullString(p.ProductType),
			nullString(strings.Join(p.Tags, ",")), priceRange, images, nullString(p.URL))
		if err != nil {
			return fmt.Errorf("failed to insert product %q: %w", p.Handle, err)
		}
	}
	return nil
}

func insertFAQs(ctx context.Context, tx *sql.Tx, brandID int64, faqs []brand.FAQ) error {
	for i, f := range faqs {
		_, err := tx.ExecContext(ctx, `INSERT INTO faqs (brand_id, position, question, answer, url) VALUES (?, ?, ?, ?, ?)`,
			brandID, i, f.Question, f.Answer, nullString(f.URL))
		if err != nil {
			return fmt.Errorf("failed to insert faq: %w", err)
		}
	}
	return nil
}

func insertPolicies(ctx context.Context, tx *sql.Tx, brandID int64, policies brand.Policies) error {
	for _, kind := range []string{brand.PolicyPrivacy, brand.PolicyReturn} {
		p := policies.Policy(kind)
		if p == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO policies (brand_id, kind, url, content) VALUES (?, ?, ?, ?)`,
			brandID, kind, nullString(p.URL), nullString(p.Content))
		if err != nil {
			return fmt.Errorf("failed to insert %s policy: %w", kind, err)
		}
	}
	return nil
}

func insertSocials(ctx context.Context, tx *sql.Tx, brandID int64, socials brand.Socials) error {
	for platform, url := range socials {
		_, err := tx.ExecContext(ctx, `INSERT INTO socials (brand_id, platform, url) VALUES (?, ?, ?)`,
			brandID, platform, url)
		if err != nil {
			return fmt.Errorf("failed to insert social %s: %w", platform, err)
		}
	}
	return nil
}

func insertContacts(ctx context.Context, tx *sql.Tx, brandID int64, contacts brand.Contacts) error {
	rows := make([][2]string, 0, len(contacts.Emails)+len(contacts.Phones))
	for _, e := range contacts.Emails {
		rows = append(rows, [2]string{ContactEmail, e})
	}
	for _, p := range contacts.Phones {
		rows = append(rows, [2]string{ContactPhone, p})
	}

	for i, row := range rows {
		_, err := tx.ExecContext(ctx, `INSERT INTO contacts (brand_id, position, kind, value) VALUES (?, ?, ?, ?)`,
			brandID, i, row[0], row[1])
		if err != nil {
			return fmt.Errorf("failed to insert contact: %w", err)
		}
	}
	return nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, brandID int64, links brand.ImportantLinks) error {
	type link struct {
		label any
		url   string
	}
	rows := make([]link, 0, 3+len(links.Others))
	for _, l := range []struct{ label, url string }{
		{LinkOrderTracking, links.OrderTracking},
		{LinkContactUs, links.ContactUs},
		{LinkBlogs, links.Blogs},
	} {
		if l.url != "" {
			rows = append(rows, link{label: l.label, url: l.url})
		}
	}
	for _, u := range links.Others {
		rows = append(rows, link{label: nil, url: u})
	}

	for i, l := range rows {
		_, err := tx.ExecContext(ctx, `INSERT INTO links (brand_id, position, label, url) VALUES (?, ?, ?, ?)`,
			brandID, i, l.label, l.url)
		if err != nil {
			return fmt.Errorf("failed to insert link: %w", err)
		}
	}
	return nil
}

// GetBrand retrieves a brand row by its origin
func (r *BrandRepository) GetBrand(ctx context.Context, origin string) (*Brand, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, website, COALESCE(name, ''), COALESCE(description, ''), created_at, updated_at
		FROM brands
		WHERE website = ?
	`, origin)

	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}

	return b, nil
}

// FindByOrigin rebuilds the persisted profile for origin. It returns nil, nil
// when the brand was never stored.
func (r *BrandRepository) FindByOrigin(ctx context.Context, origin string) (*brand.Profile, error) {
	b, err := r.GetBrand(ctx, origin)
	if err != nil || b == nil {
		return nil, err
	}

	p := &brand.Profile{
		Name:        b.Name,
		Origin:      b.Website,
		Description: b.Description,
		Catalog:     []brand.Product{},
		HeroItems:   []brand.Product{},
		FAQs:        []brand.FAQ{},
		Socials:     brand.Socials{},
		Contacts:    brand.Contacts{Emails: []string{}, Phones: []string{}},
		ImportantLinks: brand.ImportantLinks{
			Others: []string{},
		},
		Meta: brand.Meta{
			RequestedAt: b.UpdatedAt.Format(time.RFC3339),
			Success:     true,
			Errors:      []string{},
		},
	}

	if err := r.loadProducts(ctx, b.ID, p); err != nil {
		return nil, err
	}
	if err := r.loadFAQs(ctx, b.ID, p); err != nil {
		return nil, err
	}
	if err := r.loadPolicies(ctx, b.ID, p); err != nil {
		return nil, err
	}
	if err := r.loadSocials(ctx, b.ID, p); err != nil {
		return nil, err
	}
	if err := r.loadContacts(ctx, b.ID, p); err != nil {
		return nil, err
	}
	if err := r.loadLinks(ctx, b.ID, p); err != nil {
		return nil, err
	}
	if err := r.loadAbout(ctx, b.ID, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *BrandRepository) loadProducts(ctx context.Context, brandID int64, p *brand.Profile) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT featured, COALESCE(external_id, 0), COALESCE(handle, ''), COALESCE(title, ''),
		       COALESCE(vendor, ''), COALESCE(product_type, ''), COALESCE(tags, ''),
		       COALESCE(price_range, ''), COALESCE(images_json, ''), COALESCE(url, '')
		FROM products
		WHERE brand_id = ?
		ORDER BY featured, position
	`, brandID)
	if err != nil {
		return fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			product                    brand.Product
			featured                   bool
			tags, priceRange, imagesJS string
		)
		err := rows.Scan(&featured, &product.ID, &product.Handle, &product.Title, &product.Vendor,
			&product.ProductType, &tags, &priceRange, &imagesJS, &product.URL)
		if err != nil {
			return fmt.Errorf("failed to scan product row: %w", err)
		}
		if tags != "" {
			product.Tags = strings.Split(tags, ",")
		}
		if priceRange != "" {
			if err := json.Unmarshal([]byte(priceRange), &product.PriceRange); err != nil {
				return fmt.Errorf("failed to decode price range: %w", err)
			}
		}
		if imagesJS != "" {
			if err := json.Unmarshal([]byte(imagesJS), &product.Images); err != nil {
				return fmt.Errorf("failed to decode images: %w", err)
			}
		}

		if featured {
			p.HeroItems = append(p.HeroItems, product)
		} else {
			p.Catalog = append(p.Catalog, product)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product rows: %w", err)
	}
	return nil
}

func (r *BrandRepository) loadFAQs(ctx context.Context, brandID int64, p *brand.Profile) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT question, answer, COALESCE(url, '')
		FROM faqs
		WHERE brand_id = ?
		ORDER BY position
	`, brandID)
	if err != nil {
		return fmt.Errorf("failed to get faqs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f brand.FAQ
		if err := rows.Scan(&f.Question, &f.Answer, &f.URL); err != nil {
			return fmt.Errorf("failed to scan faq row: %w", err)
		}
		p.FAQs = append(p.FAQs, f)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating faq rows: %w", err)
	}
	return nil
}

func (r *BrandRepository) loadPolicies(ctx context.Context, brandID int64, p *brand.Profile) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, COALESCE(url, ''), COALESCE(content, '')
		FROM policies
		WHERE brand_id = ?
	`, brandID)
	if err != nil {
		return fmt.Errorf("failed to get policies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		policy := &brand.Policy{}
		if err := rows.Scan(&kind, &policy.URL, &policy.Content); err != nil {
			return fmt.Errorf("failed to scan policy row: %w", err)
		}
		switch kind {
		case brand.PolicyPrivacy:
			p.Policies.Privacy = policy
		case brand.PolicyReturn:
			p.Policies.Return = policy
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating policy rows: %w", err)
	}
	return nil
}

func (r *BrandRepository) loadSocials(ctx context.Context, brandID int64, p *brand.Profile) error {
	rows, err := r.db.QueryContext(ctx, `SELECT platform, url FROM socials WHERE brand_id = ?`, brandID)
	if err != nil {
		return fmt.Errorf("failed to get socials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var platform, url string
		if err := rows.Scan(&platform, &url); err != nil {
			return fmt.Errorf("failed to scan social row: %w", err)
		}
		p.Socials[platform] = url
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating social rows: %w", err)
	}
	return nil
}

func (r *BrandRepository) loadContacts(ctx context.Context, brandID int64, p *brand.Profile) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, value
		FROM contacts
		WHERE brand_id = ?
		ORDER BY position
	`, brandID)
	if err != nil {
		return fmt.Errorf("failed to get contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, value string
		if err := rows.Scan(&kind, &value); err != nil {
			return fmt.Errorf("failed to scan contact row: %w", err)
		}
		switch kind {
		case ContactEmail:
			p.Contacts.Emails = append(p.Contacts.Emails, value)
		case ContactPhone:
			p.Contacts.Phones = append(p.Contacts.Phones, value)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating contact rows: %w", err)
	}
	return nil
}

func (r *BrandRepository) loadLinks(ctx context.Context, brandID int64, p *brand.Profile) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT label, url
		FROM links
		WHERE brand_id = ?
		ORDER BY position
	`, brandID)
	if err != nil {
		return fmt.Errorf("failed to get links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			label sql.NullString
			url   string
		)
		if err := rows.Scan(&label, &url); err != nil {
			return fmt.Errorf("failed to scan link row: %w", err)
		}
		switch {
		case !label.Valid:
			p.ImportantLinks.Others = append(p.ImportantLinks.Others, url)
		case label.String == LinkOrderTracking:
			p.ImportantLinks.OrderTracking = url
		case label.String == LinkContactUs:
			p.ImportantLinks.ContactUs = url
		case label.String == LinkBlogs:
			p.ImportantLinks.Blogs = url
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating link rows: %w", err)
	}
	return nil
}

func (r *BrandRepository) loadAbout(ctx context.Context, brandID int64, p *brand.Profile) error {
	about := &brand.About{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(url, ''), COALESCE(content, '')
		FROM about
		WHERE brand_id = ?
	`, brandID).Scan(&about.URL, &about.Content)

	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get about: %w", err)
	}

	p.About = about
	return nil
}

// ListStale returns brands last updated before the given time, oldest first
func (r *BrandRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]Brand, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, website, COALESCE(name, ''), COALESCE(description, ''), created_at, updated_at
		FROM brands
		WHERE updated_at < ?
		ORDER BY updated_at
		LIMIT ?
	`, formatTime(before), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale brands: %w", err)
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand row: %w", err)
		}
		brands = append(brands, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brand rows: %w", err)
	}

	return brands, nil
}

// GetBrandCount returns the total number of stored brands
func (r *BrandRepository) GetBrandCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brands`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get brand count: %w", err)
	}
	return count, nil
}

// ReplaceCompetitors stores the competitor origins found for a persisted brand.
// Unknown brands are ignored.
func (r *BrandRepository) ReplaceCompetitors(ctx context.Context, origin string, competitors []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var brandID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM brands WHERE website = ?`, origin).Scan(&brandID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get brand: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM competitors WHERE brand_id = ?`, brandID); err != nil {
		return fmt.Errorf("failed to clear competitors: %w", err)
	}
	for i, website := range brand.UniqueStrings(competitors) {
		_, err := tx.ExecContext(ctx, `INSERT INTO competitors (brand_id, position, website) VALUES (?, ?, ?)`,
			brandID, i, website)
		if err != nil {
			return fmt.Errorf("failed to insert competitor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListCompetitors returns the stored competitor origins for a brand
func (r *BrandRepository) ListCompetitors(ctx context.Context, origin string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.website
		FROM competitors c
		JOIN brands b ON b.id = c.brand_id
		WHERE b.website = ?
		ORDER BY c.position
	`, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to get competitors: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var website string
		if err := rows.Scan(&website); err != nil {
			return nil, fmt.Errorf("failed to scan competitor row: %w", err)
		}
		out = append(out, website)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competitor rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBrand(row rowScanner) (*Brand, error) {
	var (
		b                    Brand
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &b.Website, &b.Name, &b.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	return &b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func jsonColumn(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode column: %w", err)
	}
	return string(data), nil
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
