package domain

import "strings"

// CartLine is one (product, size, color) entry in a shopper's cart
type CartLine struct {
	ProductID    string `json:"productId"`
	ProductTitle string `json:"productTitle"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	SKU          string `json:"sku"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
}

// Matches compares lines the way checkout resolves variants: trimmed and case-insensitive
func (l CartLine) Matches(productID, size, color string) bool {
	return strings.EqualFold(l.ProductID, strings.TrimSpace(productID)) &&
		strings.EqualFold(strings.TrimSpace(l.Size), strings.TrimSpace(size)) &&
		strings.EqualFold(strings.TrimSpace(l.Color), strings.TrimSpace(color))
}

// Cart is the persisted cart and wishlist of one shopper
type Cart struct {
	Lines    []CartLine `json:"lines"`
	Wishlist []string   `json:"wishlist"`
}

// Total sums unit price times quantity over all lines
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

// Count sums line quantities
func (c *Cart) Count() int {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}
