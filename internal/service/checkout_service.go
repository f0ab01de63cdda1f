package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const maxIdempotencyKeyLength = 128

// orderNumberAttempts is the initial try plus one retry on a unique collision
const orderNumberAttempts = 2

// CheckoutResult identifies the placed order. Replayed is set when an earlier
// request with the same idempotency key already created it.
type CheckoutResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Replayed    bool
}

// CheckoutService places storefront orders
type CheckoutService interface {
	PlaceOrder(ctx context.Context, input CheckoutInput, idempotencyKey string) (*CheckoutResult, error)
}

// CheckoutOptions tunes pricing and order numbering
type CheckoutOptions struct {
	Pricing        PricingRules
	OrderPrefix    string
	NewOrderNumber func() string
}

type checkoutService struct {
	tx             TxRunner
	catalog        repository.CatalogRepository
	orders         repository.OrderRepository
	customers      repository.CustomerRepository
	ledger         repository.InventoryLedger
	pricing        PricingRules
	newOrderNumber func() string
	validate       *validator.Validate
	logger         *zap.Logger
	now            func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	tx TxRunner,
	catalog repository.CatalogRepository,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	ledger repository.InventoryLedger,
	opts CheckoutOptions,
	logger *zap.Logger,
) CheckoutService {
	if opts.Pricing == (PricingRules{}) {
		opts.Pricing = DefaultPricingRules()
	}
	if opts.OrderPrefix == "" {
		opts.OrderPrefix = DefaultOrderPrefix
	}
	if opts.NewOrderNumber == nil {
		prefix := opts.OrderPrefix
		opts.NewOrderNumber = func() string { return NewOrderNumber(prefix, time.Now()) }
	}

	return &checkoutService{
		tx:             tx,
		catalog:        catalog,
		orders:         orders,
		customers:      customers,
		ledger:         ledger,
		pricing:        opts.Pricing,
		newOrderNumber: opts.NewOrderNumber,
		validate:       validator.New(),
		logger:         logger,
		now:            time.Now,
	}
}

// PlaceOrder validates the cart against live variants, then writes the
// customer, the order with its items and one guarded stock decrement per line
// in a single transaction. Every failure is a *CheckoutError.
func (s *checkoutService) PlaceOrder(ctx context.Context, input CheckoutInput, idempotencyKey string) (*CheckoutResult, error) {
	in := input.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, newCheckoutError(KindInvalidPayload, err)
	}
	if len(idempotencyKey) > maxIdempotencyKeyLength {
		return nil, newCheckoutError(KindInvalidPayload, errors.New("idempotency key too long"))
	}

	if idempotencyKey != "" {
		existing, err := s.orders.FindByIdempotencyKey(ctx, idempotencyKey)
		switch {
		case err == nil:
			return replayed(existing), nil
		case !errors.Is(err, repository.ErrOrderNotFound):
			return nil, s.writeFailure(err, "")
		}
	}

	variants, err := s.catalog.FindPurchasableVariants(ctx, uniqueProductIDs(in.Items))
	if err != nil {
		return nil, s.writeFailure(err, "")
	}

	lines, err := ValidateCheckoutLines(in.Items, variants)
	if err != nil {
		return nil, err
	}

	order := AssembleOrder(in, lines, s.pricing, s.now())
	if idempotencyKey != "" {
		order.IdempotencyKey = &idempotencyKey
	}
	customer := &domain.Customer{
		Email: in.Customer.Email,
		Name:  order.ShippingAddress.Name,
		Phone: in.Customer.Phone,
	}

	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		order.OrderNumber = s.newOrderNumber()

		err = s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
			return s.writeOrder(ctx, tx, order, customer, lines)
		})

		switch {
		case err == nil:
			s.logger.Info("Order placed",
				zap.String("order_id", order.ID.String()),
				zap.String("order_number", order.OrderNumber),
				zap.Int64("total", order.Total),
				zap.Int("lines", len(order.Items)),
			)
			return &CheckoutResult{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil

		case errors.Is(err, repository.ErrOrderNumberTaken):
			s.logger.Warn("Order number collision",
				zap.String("order_number", order.OrderNumber),
				zap.Int("attempt", attempt),
			)
			continue

		case errors.Is(err, repository.ErrIdempotencyKeyTaken):
			existing, findErr := s.orders.FindByIdempotencyKey(ctx, idempotencyKey)
			if findErr != nil {
				return nil, s.writeFailure(findErr, order.OrderNumber)
			}
			return replayed(existing), nil
		}

		var checkoutErr *CheckoutError
		if errors.As(err, &checkoutErr) {
			return nil, checkoutErr
		}
		return nil, s.writeFailure(err, order.OrderNumber)
	}

	s.logger.Error("Order number collided on every attempt", zap.String("order_number", order.OrderNumber))
	return nil, newCheckoutError(KindOrderNumberCollision, repository.ErrOrderNumberTaken)
}

func (s *checkoutService) writeOrder(ctx context.Context, tx *sqlx.Tx, order *domain.Order, customer *domain.Customer, lines []ValidatedLine) error {
	customerID, err := s.customers.WithTx(tx).UpsertByEmail(ctx, customer)
	if err != nil {
		return err
	}
	order.CustomerID = customerID

	if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
		return err
	}

	ledger := s.ledger.WithTx(tx)
	reason := fmt.Sprintf("Order %s", order.OrderNumber)
	for _, line := range lockOrder(lines) {
		_, err := ledger.Apply(ctx, domain.StockChange{
			VariantID: line.Variant.ID,
			Delta:     -line.Qty,
			Reason:    reason,
			Policy:    domain.StockPolicyReject,
		})
		if errors.Is(err, repository.ErrInsufficientStock) {
			return &CheckoutError{Kind: KindOutOfStock, StockIssues: []string{line.Variant.SKU}, Err: err}
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// lockOrder returns the lines sorted by variant id so concurrent checkouts
// take variant row locks in the same order.
func lockOrder(lines []ValidatedLine) []ValidatedLine {
	sorted := slices.Clone(lines)
	slices.SortFunc(sorted, func(a, b ValidatedLine) int {
		return bytes.Compare(a.Variant.ID[:], b.Variant.ID[:])
	})
	return sorted
}

func (s *checkoutService) writeFailure(err error, orderNumber string) error {
	s.logger.Error("Failed to create order",
		zap.Error(err),
		zap.String("order_number", orderNumber),
	)
	return newCheckoutError(KindTransactionFailure, err)
}

func replayed(order *domain.Order) *CheckoutResult {
	return &CheckoutResult{OrderID: order.ID, OrderNumber: order.OrderNumber, Replayed: true}
}

func uniqueProductIDs(items []CheckoutItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
