// Package competitors suggests rival storefronts for a brand from a YAML catalog
// of keyword groups.
package competitors

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/storelens/storelens/app/brand"
	"github.com/storelens/storelens/app/scraper"
)

// Finder reloads its catalog whenever the file changes on disk.
type Finder struct {
	path string

	mu      sync.RWMutex
	catalog *Catalog
	modTime time.Time
}

func NewFinder(path string) *Finder {
	return &Finder{path: path, catalog: &Catalog{}}
}

// Load reads the catalog file. A missing file yields an empty catalog.
func (f *Finder) Load() error {
	info, err := os.Stat(f.path)
	if os.IsNotExist(err) {
		f.mu.Lock()
		f.catalog, f.modTime = &Catalog{}, time.Time{}
		f.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat competitors file: %w", err)
	}

	f.mu.RLock()
	fresh := !f.modTime.IsZero() && info.ModTime().Equal(f.modTime)
	f.mu.RUnlock()
	if fresh {
		return nil
	}

	catalog, err := parseCatalog(f.path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.catalog, f.modTime = catalog, info.ModTime()
	f.mu.Unlock()

	slog.Debug("Competitor catalog loaded", "path", f.path, "groups", len(catalog.Groups))
	return nil
}

func (f *Finder) GroupCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.catalog.Groups)
}

// Find returns up to MaxCompetitors storefront origins from the groups profile
// matches, excluding the profile's own origin.
func (f *Finder) Find(ctx context.Context, profile *brand.Profile) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.Load(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	catalog := f.catalog
	f.mu.RUnlock()

	values := fieldValues(profile)
	self := scraper.NormalizeOrigin(profile.Origin)

	var out []string
	seen := map[string]struct{}{self: {}}
	for _, g := range catalog.Groups {
		if !g.matches(values) {
			continue
		}
		for _, store := range g.Stores {
			origin := scraper.NormalizeOrigin(store)
			if _, ok := seen[origin]; ok {
				continue
			}
			seen[origin] = struct{}{}
			out = append(out, origin)
			if len(out) == MaxCompetitors {
				return out, nil
			}
		}
	}
	return out, nil
}

func (g Group) matches(values map[string]string) bool {
	fields := g.Fields
	if len(fields) == 0 {
		fields = allFields
	}

	for _, field := range fields {
		for _, exclude := range g.Excludes {
			if containsFold(values[field], exclude) {
				return false
			}
		}
	}

	for _, field := range fields {
		for _, keyword := range g.Keywords {
			if containsFold(values[field], keyword) {
				return true
			}
		}
	}
	return false
}

func containsFold(value, pattern string) bool {
	return value != "" && strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func fieldValues(p *brand.Profile) map[string]string {
	var types, tags, vendors []string
	for _, product := range p.Catalog {
		types = append(types, product.ProductType)
		tags = append(tags, product.Tags...)
		vendors = append(vendors, product.Vendor)
	}

	return map[string]string{
		FieldName:         p.Name,
		FieldDescription:  p.Description,
		FieldProductTypes: strings.Join(brand.UniqueStrings(types), " "),
		FieldTags:         strings.Join(brand.UniqueStrings(tags), " "),
		FieldVendors:      strings.Join(brand.UniqueStrings(vendors), " "),
	}
}

func parseCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("invalid competitors file %s: %w", path, err)
	}

	return &catalog, nil
}

func validateCatalog(catalog *Catalog) error {
	validFields := make(map[string]bool, len(allFields))
	for _, f := range allFields {
		validFields[f] = true
	}

	for i, g := range catalog.Groups {
		if len(g.Keywords) == 0 {
			return fmt.Errorf("group at index %d must have at least one keyword", i)
		}
		if len(g.Stores) == 0 {
			return fmt.Errorf("group at index %d must list at least one store", i)
		}
		for _, field := range g.Fields {
			if !validFields[field] {
				return fmt.Errorf("invalid field in group at index %d: %s", i, field)
			}
		}
	}

	return nil
}
