package service

import "strings"

// CheckoutInput is the storefront checkout payload
type CheckoutInput struct {
	Customer CheckoutCustomer `json:"customer" validate:"required"`
	Shipping CheckoutShipping `json:"shipping" validate:"required"`
	Payment  *CheckoutPayment `json:"payment" validate:"omitempty"`
	Items    []CheckoutItem   `json:"items" validate:"required,min=1,max=100,dive"`
}

type CheckoutCustomer struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
}

type CheckoutShipping struct {
	HouseNumber string `json:"houseNumber" validate:"required,max=50"`
	StreetName  string `json:"streetName" validate:"required,max=255"`
	Building    string `json:"building" validate:"max=255"`
	Region      string `json:"region" validate:"required,max=100"`
	Province    string `json:"province" validate:"required,max=100"`
	City        string `json:"city" validate:"required,max=100"`
	Barangay    string `json:"barangay" validate:"required,max=100"`
	PostalCode  string `json:"postalCode" validate:"required,max=20"`
}

type CheckoutPayment struct {
	Method     string `json:"method" validate:"required,max=50"`
	CardName   string `json:"cardName" validate:"required,max=255"`
	CardNumber string `json:"cardNumber" validate:"required,min=4,max=32"`
}

type CheckoutItem struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// normalize trims every text field and lower-cases the email. An empty phone
// becomes nil.
func (in CheckoutInput) normalize() CheckoutInput {
	out := CheckoutInput{
		Customer: CheckoutCustomer{
			FirstName: strings.TrimSpace(in.Customer.FirstName),
			LastName:  strings.TrimSpace(in.Customer.LastName),
			Email:     strings.ToLower(strings.TrimSpace(in.Customer.Email)),
		},
		Shipping: CheckoutShipping{
			HouseNumber: strings.TrimSpace(in.Shipping.HouseNumber),
			StreetName:  strings.TrimSpace(in.Shipping.StreetName),
			Building:    strings.TrimSpace(in.Shipping.Building),
			Region:      strings.TrimSpace(in.Shipping.Region),
			Province:    strings.TrimSpace(in.Shipping.Province),
			City:        strings.TrimSpace(in.Shipping.City),
			Barangay:    strings.TrimSpace(in.Shipping.Barangay),
			PostalCode:  strings.TrimSpace(in.Shipping.PostalCode),
		},
	}

	if in.Customer.Phone != nil {
		if phone := strings.TrimSpace(*in.Customer.Phone); phone != "" {
			out.Customer.Phone = &phone
		}
	}

	if in.Payment != nil {
		out.Payment = &CheckoutPayment{
			Method:     strings.TrimSpace(in.Payment.Method),
			CardName:   strings.TrimSpace(in.Payment.CardName),
			CardNumber: strings.TrimSpace(in.Payment.CardNumber),
		}
	}

	if in.Items != nil {
		out.Items = make([]CheckoutItem, len(in.Items))
		for i, item := range in.Items {
			out.Items[i] = CheckoutItem{
				ProductID: strings.TrimSpace(item.ProductID),
				Size:      strings.TrimSpace(item.Size),
				Color:     strings.TrimSpace(item.Color),
				Quantity:  item.Quantity,
			}
		}
	}

	return out
}
