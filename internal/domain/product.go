package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus controls catalog visibility
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// Product represents a catalog item. Prices are whole currency units.
type Product struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	Slug           string        `json:"slug" db:"slug"`
	Title          string        `json:"title" db:"title"`
	Description    string        `json:"description" db:"description"`
	Category       string        `json:"category" db:"category"`
	Status         ProductStatus `json:"status" db:"status"`
	BasePrice      int64         `json:"basePrice" db:"base_price"`
	CompareAtPrice *int64        `json:"compareAtPrice,omitempty" db:"compare_at_price"`
	Tags           []string      `json:"tags" db:"tags"`
	Images         []string      `json:"images" db:"images"`
	DeletedAt      *time.Time    `json:"deletedAt,omitempty" db:"deleted_at"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// Purchasable reports whether the product may be sold
func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive && p.DeletedAt == nil
}

// Variant is a size/color SKU of a product and the unit of inventory
type Variant struct {
	ID                uuid.UUID `json:"id" db:"id"`
	ProductID         uuid.UUID `json:"productId" db:"product_id"`
	Size              string    `json:"size" db:"size"`
	Color             string    `json:"color" db:"color"`
	SKU               string    `json:"sku" db:"sku"`
	StockQty          int       `json:"stockQty" db:"stock_qty"`
	LowStockThreshold int       `json:"lowStockThreshold" db:"low_stock_threshold"`
	PriceOverride     *int64    `json:"priceOverride,omitempty" db:"price_override"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// UnitPrice resolves the selling price; an override always wins over the base price
func (v *Variant) UnitPrice(basePrice int64) int64 {
	if v.PriceOverride != nil {
		return *v.PriceOverride
	}
	return basePrice
}

// LowStock reports whether the variant is at or below its threshold
func (v *Variant) LowStock() bool {
	return v.StockQty <= v.LowStockThreshold
}

// PurchasableVariant is an active variant of an active product joined with
// the product fields checkout needs.
type PurchasableVariant struct {
	Variant
	ProductTitle string `json:"productTitle" db:"product_title"`
	BasePrice    int64  `json:"basePrice" db:"base_price"`
}

// UnitPrice resolves the selling price against the joined base price
func (pv *PurchasableVariant) UnitPrice() int64 {
	return pv.Variant.UnitPrice(pv.BasePrice)
}

// CatalogProduct is a purchasable product with its variants
type CatalogProduct struct {
	Product
	Variants []Variant `json:"variants"`
}
