// Package catalog loads skincare product catalogs and publishes them as
// immutable snapshots.
package catalog

import (
	"sort"
	"strings"
)

// SkinTypeAll marks a product as suitable for every skin type.
const SkinTypeAll = "all"

// Product is a single catalog entry. Products are read-only once loaded;
// nothing downstream of the loader writes to them.
type Product struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	SkinType    string   `json:"skinType"`
	Ingredients []string `json:"keyIngredients"`
	URL         string   `json:"url"`
	GoodStuff   bool     `json:"goodStuff"`
	Rating      float64  `json:"rating"`
}

// Key returns a stable identity for the product within a catalog.
func (p Product) Key() string {
	return strings.ToLower(strings.TrimSpace(p.Brand)) + "|" + strings.ToLower(strings.TrimSpace(p.Name))
}

// RowIssue records a recoverable problem found while loading one row.
type RowIssue struct {
	Row     int
	Product string
	Reason  string
}

// Catalog is an immutable product collection plus the indexes derived from it.
type Catalog struct {
	products    []Product
	ingredients []string
	skinTypes   map[string]int
	categories  map[string]int
	brands      map[string]int
	issues      []RowIssue
	source      string
}

// New builds a catalog from already-normalized products.
func New(products []Product) *Catalog {
	c := &Catalog{
		products:   products,
		skinTypes:  make(map[string]int),
		categories: make(map[string]int),
		brands:     make(map[string]int),
	}

	seen := make(map[string]struct{})
	for _, p := range products {
		for _, ing := range p.Ingredients {
			if _, ok := seen[ing]; ok {
				continue
			}
			seen[ing] = struct{}{}
			c.ingredients = append(c.ingredients, ing)
		}
		if st := strings.TrimSpace(p.SkinType); st != "" {
			c.skinTypes[st]++
		}
		if cat := strings.TrimSpace(p.Category); cat != "" {
			c.categories[cat]++
		}
		if brand := strings.TrimSpace(p.Brand); brand != "" {
			c.brands[brand]++
		}
	}
	sort.Strings(c.ingredients)
	return c
}

// Products returns the catalog entries. Callers must not modify the slice.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	return c.products
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Ingredients returns the sorted ingredient vocabulary of the whole catalog.
func (c *Catalog) Ingredients() []string {
	if c == nil {
		return nil
	}
	return c.ingredients
}

// SkinTypes returns product counts keyed by skin type.
func (c *Catalog) SkinTypes() map[string]int {
	if c == nil {
		return map[string]int{}
	}
	return copyCounts(c.skinTypes)
}

// Categories returns product counts keyed by category.
func (c *Catalog) Categories() map[string]int {
	if c == nil {
		return map[string]int{}
	}
	return copyCounts(c.categories)
}

// Brands returns product counts keyed by brand.
func (c *Catalog) Brands() map[string]int {
	if c == nil {
		return map[string]int{}
	}
	return copyCounts(c.brands)
}

// Issues returns the recoverable row problems seen while loading.
func (c *Catalog) Issues() []RowIssue {
	if c == nil {
		return nil
	}
	return c.issues
}

// Source returns where the catalog was loaded from, if known.
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
