package service

import (
	"strings"
	"time"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
)

const (
	DefaultFreeShippingThreshold int64 = 2000
	DefaultStandardShippingFee   int64 = 150
)

// PricingRules holds the shipping step function. Subtotals at or above the
// threshold ship free.
type PricingRules struct {
	FreeShippingThreshold int64
	StandardShippingFee   int64
}

func DefaultPricingRules() PricingRules {
	return PricingRules{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		StandardShippingFee:   DefaultStandardShippingFee,
	}
}

// ShippingFee returns 0 when subtotal reaches the threshold, else the flat fee
func (p PricingRules) ShippingFee(subtotal int64) int64 {
	if subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.StandardShippingFee
}

// Totals computes subtotal, shipping fee and total over validated lines
func (p PricingRules) Totals(lines []ValidatedLine) (subtotal, shippingFee, total int64) {
	for _, l := range lines {
		subtotal += l.LineTotal()
	}
	shippingFee = p.ShippingFee(subtotal)
	return subtotal, shippingFee, subtotal + shippingFee
}

// AddressLine joins house number and street, with the building as an optional suffix
func AddressLine(houseNumber, streetName, building string) string {
	line := houseNumber + " " + streetName
	if building != "" {
		line += ", " + building
	}
	return line
}

// BuildShippingAddress snapshots the normalized shipping fields
func BuildShippingAddress(customer CheckoutCustomer, shipping CheckoutShipping) domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:        strings.TrimSpace(customer.FirstName + " " + customer.LastName),
		AddressLine: AddressLine(shipping.HouseNumber, shipping.StreetName, shipping.Building),
		HouseNumber: shipping.HouseNumber,
		StreetName:  shipping.StreetName,
		Building:    shipping.Building,
		Barangay:    shipping.Barangay,
		City:        shipping.City,
		Province:    shipping.Province,
		Region:      shipping.Region,
		PostalCode:  shipping.PostalCode,
	}
}

// BuildPaymentDetails keeps method, cardholder and the last four card digits.
// The card number itself is never returned.
func BuildPaymentDetails(payment *CheckoutPayment) *domain.PaymentDetails {
	if payment == nil {
		return nil
	}

	details := &domain.PaymentDetails{
		Method:         payment.Method,
		CardholderName: payment.CardName,
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, payment.CardNumber)

	if digits != "" {
		last4 := digits
		if len(digits) > 4 {
			last4 = digits[len(digits)-4:]
		}
		details.Last4 = &last4
	}

	return details
}

// AssembleOrder builds the order header and item snapshots. The customer id
// is filled in by the write phase.
func AssembleOrder(in CheckoutInput, lines []ValidatedLine, rules PricingRules, now time.Time) *domain.Order {
	subtotal, shippingFee, total := rules.Totals(lines)

	order := &domain.Order{
		ID:                uuid.New(),
		Email:             in.Customer.Email,
		Phone:             in.Customer.Phone,
		ShippingAddress:   BuildShippingAddress(in.Customer, in.Shipping),
		PaymentDetails:    BuildPaymentDetails(in.Payment),
		Subtotal:          subtotal,
		ShippingFee:       shippingFee,
		Total:             total,
		PaymentStatus:     domain.PaymentStatusUnpaid,
		FulfillmentStatus: domain.FulfillmentUnfulfilled,
		Items:             make([]domain.OrderItem, 0, len(lines)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, l := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ID:            uuid.New(),
			OrderID:       order.ID,
			ProductID:     l.Variant.ProductID,
			VariantID:     l.Variant.ID,
			NameSnapshot:  l.Variant.ProductTitle,
			SKUSnapshot:   l.Variant.SKU,
			PriceSnapshot: l.UnitPrice,
			Qty:           l.Qty,
			CreatedAt:     now,
		})
	}

	return order
}
