package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "UNFULFILLED"
	FulfillmentProcessing  FulfillmentStatus = "PROCESSING"
	FulfillmentShipped     FulfillmentStatus = "SHIPPED"
	FulfillmentDelivered   FulfillmentStatus = "DELIVERED"
	FulfillmentCancelled   FulfillmentStatus = "CANCELLED"
)

// fulfillmentRank orders the forward path; CANCELLED sits outside it
var fulfillmentRank = map[FulfillmentStatus]int{
	FulfillmentUnfulfilled: 0,
	FulfillmentProcessing:  1,
	FulfillmentShipped:     2,
	FulfillmentDelivered:   3,
}

func (s FulfillmentStatus) Valid() bool {
	_, ok := fulfillmentRank[s]
	return ok || s == FulfillmentCancelled
}

// Terminal reports whether no further fulfillment work is expected
func (s FulfillmentStatus) Terminal() bool {
	return s == FulfillmentDelivered || s == FulfillmentCancelled
}

// CanTransitionTo applies the strict guard: terminal states are final, CANCELLED
// is reachable from any non-terminal state, and the forward path never goes back.
// Setting the current status again is always allowed.
func (s FulfillmentStatus) CanTransitionTo(next FulfillmentStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == FulfillmentCancelled {
		return true
	}
	return fulfillmentRank[next] > fulfillmentRank[s]
}

// ShippingAddress is a flat snapshot copied onto the order at checkout
type ShippingAddress struct {
	Name        string `json:"name"`
	AddressLine string `json:"addressLine"`
	HouseNumber string `json:"houseNumber"`
	StreetName  string `json:"streetName"`
	Building    string `json:"building"`
	Barangay    string `json:"barangay"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Region      string `json:"region"`
	PostalCode  string `json:"postalCode"`
}

// PaymentDetails keeps the method, cardholder and last four digits only
type PaymentDetails struct {
	Method         string  `json:"method"`
	CardholderName string  `json:"cardholderName"`
	Last4          *string `json:"last4"`
}

// Order is created once at checkout; afterwards only status, tracking and notes change
type Order struct {
	ID                uuid.UUID         `json:"id"`
	OrderNumber       string            `json:"orderNumber"`
	IdempotencyKey    *string           `json:"-"`
	CustomerID        uuid.UUID         `json:"customerId"`
	Email             string            `json:"email"`
	Phone             *string           `json:"phone,omitempty"`
	ShippingAddress   ShippingAddress   `json:"shippingAddress"`
	PaymentDetails    *PaymentDetails   `json:"paymentDetails,omitempty"`
	Subtotal          int64             `json:"subtotal"`
	ShippingFee       int64             `json:"shippingFee"`
	Total             int64             `json:"total"`
	PaymentStatus     PaymentStatus     `json:"paymentStatus"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillmentStatus"`
	TrackingNumber    *string           `json:"trackingNumber,omitempty"`
	Courier           *string           `json:"courier,omitempty"`
	Notes             string            `json:"notes"`
	Items             []OrderItem       `json:"items"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// OrderItem is an immutable snapshot of a purchased line
type OrderItem struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OrderID       uuid.UUID `json:"orderId" db:"order_id"`
	ProductID     uuid.UUID `json:"productId" db:"product_id"`
	VariantID     uuid.UUID `json:"variantId" db:"variant_id"`
	NameSnapshot  string    `json:"nameSnapshot" db:"name_snapshot"`
	SKUSnapshot   string    `json:"skuSnapshot" db:"sku_snapshot"`
	PriceSnapshot int64     `json:"priceSnapshot" db:"price_snapshot"`
	Qty           int       `json:"qty" db:"qty"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// LineTotal is price snapshot times quantity
func (i OrderItem) LineTotal() int64 {
	return i.PriceSnapshot * int64(i.Qty)
}

// OrderSummary is a row of the admin order list
type OrderSummary struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	OrderNumber       string            `json:"orderNumber" db:"order_number"`
	Email             string            `json:"email" db:"email"`
	Total             int64             `json:"total" db:"total"`
	PaymentStatus     PaymentStatus     `json:"paymentStatus" db:"payment_status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillmentStatus" db:"fulfillment_status"`
	ItemCount         int               `json:"itemCount" db:"item_count"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
}

// OrderFilter narrows the admin order list; empty fields mean "all"
type OrderFilter struct {
	PaymentStatus     PaymentStatus
	FulfillmentStatus FulfillmentStatus
	CustomerID        uuid.UUID
	Limit             int
}
