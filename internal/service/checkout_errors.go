package service

import (
	"errors"
	"fmt"
)

// CheckoutErrorKind classifies why an order could not be placed
type CheckoutErrorKind string

const (
	KindInvalidPayload       CheckoutErrorKind = "INVALID_PAYLOAD"
	KindItemsUnavailable     CheckoutErrorKind = "ITEMS_UNAVAILABLE"
	KindOutOfStock           CheckoutErrorKind = "OUT_OF_STOCK"
	KindTransactionFailure   CheckoutErrorKind = "TRANSACTION_FAILURE"
	KindOrderNumberCollision CheckoutErrorKind = "ORDER_NUMBER_COLLISION"
)

var (
	ErrInvalidPayload       = errors.New("invalid payload")
	ErrItemsUnavailable     = errors.New("some items are no longer available")
	ErrOutOfStock           = errors.New("some items are out of stock")
	ErrTransactionFailure   = errors.New("unable to create order")
	ErrOrderNumberCollision = errors.New("order number collision")
)

var kindSentinels = map[CheckoutErrorKind]error{
	KindInvalidPayload:       ErrInvalidPayload,
	KindItemsUnavailable:     ErrItemsUnavailable,
	KindOutOfStock:           ErrOutOfStock,
	KindTransactionFailure:   ErrTransactionFailure,
	KindOrderNumberCollision: ErrOrderNumberCollision,
}

// CheckoutError is returned by every failed checkout. MissingItems lists
// "productId:size:color" keys, StockIssues lists skus.
type CheckoutError struct {
	Kind         CheckoutErrorKind
	MissingItems []string
	StockIssues  []string
	Err          error
}

func (e *CheckoutError) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is matches the sentinel of the error's kind
func (e *CheckoutError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

func newCheckoutError(kind CheckoutErrorKind, err error) *CheckoutError {
	return &CheckoutError{Kind: kind, Err: err}
}
