package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"
)

const defaultColorHex = "#121214"

var colorHex = map[string]string{
	"Black":    "#0B0B0C",
	"White":    "#FFFFFF",
	"Charcoal": "#121214",
	"Olive":    "#4A4A3A",
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type StorefrontColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type StorefrontProduct struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Category      string            `json:"category"`
	Price         int64             `json:"price"`
	OriginalPrice *int64            `json:"originalPrice,omitempty"`
	Description   string            `json:"description"`
	Images        []string          `json:"images"`
	Sizes         []string          `json:"sizes"`
	Colors        []StorefrontColor `json:"colors"`
	Badge         string            `json:"badge,omitempty"`
	InStock       bool              `json:"inStock"`
}

type StorefrontCategory struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type StorefrontCatalog struct {
	Products   []StorefrontProduct  `json:"products"`
	Categories []StorefrontCategory `json:"categories"`
}

// StorefrontService shapes the public catalog
type StorefrontService interface {
	Catalog(ctx context.Context) (*StorefrontCatalog, error)
}

type storefrontService struct {
	catalog repository.CatalogRepository
}

// NewStorefrontService creates a new instance of StorefrontService
func NewStorefrontService(catalog repository.CatalogRepository) StorefrontService {
	return &storefrontService{catalog: catalog}
}

// EmptyCatalog is served when no database is configured
func EmptyCatalog() *StorefrontCatalog {
	return &StorefrontCatalog{Products: []StorefrontProduct{}, Categories: []StorefrontCategory{}}
}

func (s *storefrontService) Catalog(ctx context.Context) (*StorefrontCatalog, error) {
	products, err := s.catalog.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list storefront products: %w", err)
	}
	return BuildStorefrontCatalog(products), nil
}

// BuildStorefrontCatalog maps purchasable products, keeping their order, and
// collects the distinct categories sorted by name
func BuildStorefrontCatalog(products []domain.CatalogProduct) *StorefrontCatalog {
	out := EmptyCatalog()
	categories := map[string]string{}

	for _, p := range products {
		out.Products = append(out.Products, toStorefrontProduct(p))
		if p.Category != "" {
			categories[p.Category] = Slugify(p.Category)
		}
	}

	for name, slug := range categories {
		out.Categories = append(out.Categories, StorefrontCategory{Name: name, Slug: slug})
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		return out.Categories[i].Name < out.Categories[j].Name
	})

	return out
}

func toStorefrontProduct(p domain.CatalogProduct) StorefrontProduct {
	sp := StorefrontProduct{
		ID:            p.ID.String(),
		Name:          p.Title,
		Slug:          p.Slug,
		Category:      p.Category,
		Price:         p.BasePrice,
		OriginalPrice: p.CompareAtPrice,
		Description:   p.Description,
		Images:        p.Images,
		Sizes:         []string{},
		Colors:        []StorefrontColor{},
		Badge:         Badge(p.Product),
	}
	if sp.Images == nil {
		sp.Images = []string{}
	}

	seenSize := map[string]bool{}
	seenColor := map[string]bool{}
	for _, v := range p.Variants {
		if !seenSize[v.Size] {
			seenSize[v.Size] = true
			sp.Sizes = append(sp.Sizes, v.Size)
		}
		if !seenColor[v.Color] {
			seenColor[v.Color] = true
			sp.Colors = append(sp.Colors, StorefrontColor{Name: v.Color, Hex: ColorHex(v.Color)})
		}
		if v.StockQty > 0 {
			sp.InStock = true
		}
	}

	return sp
}

// Badge prefers explicit "sale" and "new" tags, then a compare-at price above base
func Badge(p domain.Product) string {
	hasTag := func(tag string) bool {
		for _, t := range p.Tags {
			if t == tag {
				return true
			}
		}
		return false
	}

	switch {
	case hasTag("sale"):
		return "sale"
	case hasTag("new"):
		return "new"
	case p.CompareAtPrice != nil && *p.CompareAtPrice > p.BasePrice:
		return "sale"
	}
	return ""
}

func ColorHex(color string) string {
	if hex, ok := colorHex[color]; ok {
		return hex
	}
	return defaultColorHex
}

func Slugify(value string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(value), "-"), "-")
}
