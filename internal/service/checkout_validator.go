package service

import (
	"fmt"
	"strings"

	"reverie-revival/internal/domain"
)

// ValidatedLine is a cart line resolved to a purchasable variant
type ValidatedLine struct {
	Variant   domain.PurchasableVariant
	Qty       int
	UnitPrice int64
}

// LineTotal is unit price times quantity
func (l ValidatedLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Qty)
}

func variantKey(productID, size, color string) string {
	return strings.ToLower(strings.TrimSpace(productID)) + "::" + strings.ToLower(strings.TrimSpace(size)) + "::" + strings.ToLower(strings.TrimSpace(color))
}

// ValidateCheckoutLines resolves every item against variants, which must
// already be restricted to active variants of ACTIVE, non-deleted products.
// Unresolvable items fail the whole cart with ITEMS_UNAVAILABLE; only a fully
// resolved cart is checked for stock, failing with OUT_OF_STOCK by sku.
func ValidateCheckoutLines(items []CheckoutItem, variants []domain.PurchasableVariant) ([]ValidatedLine, error) {
	byKey := make(map[string]domain.PurchasableVariant, len(variants))
	for _, v := range variants {
		byKey[variantKey(v.ProductID.String(), v.Size, v.Color)] = v
	}

	var missing []string
	var stockIssues []string
	lines := make([]ValidatedLine, 0, len(items))

	for _, item := range items {
		variant, ok := byKey[variantKey(item.ProductID, item.Size, item.Color)]
		if !ok {
			missing = append(missing, fmt.Sprintf("%s:%s:%s", item.ProductID, item.Size, item.Color))
			continue
		}

		if variant.StockQty < item.Quantity {
			stockIssues = append(stockIssues, variant.SKU)
		}

		lines = append(lines, ValidatedLine{
			Variant:   variant,
			Qty:       item.Quantity,
			UnitPrice: variant.UnitPrice(),
		})
	}

	if len(missing) > 0 {
		return nil, &CheckoutError{Kind: KindItemsUnavailable, MissingItems: missing}
	}

	if len(stockIssues) > 0 {
		return nil, &CheckoutError{Kind: KindOutOfStock, StockIssues: stockIssues}
	}

	return lines, nil
}
