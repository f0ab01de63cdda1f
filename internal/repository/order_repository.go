package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNumberTaken    = errors.New("order number already exists")
	ErrIdempotencyKeyTaken = errors.New("idempotency key already used")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	WithTx(tx *sqlx.Tx) OrderRepository
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderSummary, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error)
	UpdateFulfillment(ctx context.Context, id uuid.UUID, status domain.FulfillmentStatus, trackingNumber, courier *string) (*domain.Order, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*domain.Order, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type orderRepository struct {
	db Querier
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db Querier) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *sqlx.Tx) OrderRepository {
	return &orderRepository{db: tx}
}

const orderColumns = `id, order_number, idempotency_key, customer_id, email, phone, shipping_address,
	payment_details, subtotal, shipping_fee, total, payment_status, fulfillment_status,
	tracking_number, courier, notes, created_at, updated_at`

// Create inserts the order header and its item snapshots. Callers run it inside
// a transaction so a failed item insert leaves no header behind.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	var payment []byte
	if order.PaymentDetails != nil {
		if payment, err = json.Marshal(order.PaymentDetails); err != nil {
			return fmt.Errorf("failed to encode payment details: %w", err)
		}
	}

	query := `
		INSERT INTO orders (id, order_number, idempotency_key, customer_id, email, phone,
		                    shipping_address, payment_details, subtotal, shipping_fee, total,
		                    payment_status, fulfillment_status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderNumber,
		nullableString(order.IdempotencyKey),
		order.CustomerID,
		order.Email,
		nullableString(order.Phone),
		string(address),
		nullableJSON(payment),
		order.Subtotal,
		order.ShippingFee,
		order.Total,
		order.PaymentStatus,
		order.FulfillmentStatus,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		switch {
		case isUniqueViolation(err, "orders_order_number_key"):
			return ErrOrderNumberTaken
		case isUniqueViolation(err, "orders_idempotency_key_key"):
			return ErrIdempotencyKeyTaken
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, variant_id, name_snapshot,
			                         sku_snapshot, price_snapshot, qty, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.NameSnapshot,
			item.SKUSnapshot,
			item.PriceSnapshot,
			item.Qty,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// FindByID retrieves an order with its items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// FindByIdempotencyKey retrieves the order a checkout key already produced
func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
}

// LockForUpdate reads an order and holds its row lock until the transaction ends
func (r *orderRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	order.Items = []domain.OrderItem{}
	err = sqlx.SelectContext(ctx, r.db, &order.Items, `
		SELECT id, order_id, product_id, variant_id, name_snapshot, sku_snapshot,
		       price_snapshot, qty, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, sku_snapshot
	`, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	return order, nil
}

// List returns order summaries, newest first
func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderSummary, error) {
	var conditions []string
	var args []interface{}

	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conditions = append(conditions, fmt.Sprintf("o.payment_status = $%d", len(args)))
	}
	if filter.FulfillmentStatus != "" {
		args = append(args, filter.FulfillmentStatus)
		conditions = append(conditions, fmt.Sprintf("o.fulfillment_status = $%d", len(args)))
	}
	if filter.CustomerID != uuid.Nil {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT o.id, o.order_number, o.email, o.total, o.payment_status, o.fulfillment_status,
		       COALESCE(SUM(oi.qty), 0) AS item_count, o.created_at
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" GROUP BY o.id ORDER BY o.created_at DESC LIMIT $%d", len(args))

	orders := []domain.OrderSummary{}
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// UpdatePaymentStatus sets the payment status and returns the updated order
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error) {
	return r.update(ctx, `UPDATE orders SET payment_status = $2 WHERE id = $1`, id, status)
}

// UpdateFulfillment sets the fulfillment status together with tracking and courier; nil clears them
func (r *orderRepository) UpdateFulfillment(ctx context.Context, id uuid.UUID, status domain.FulfillmentStatus, trackingNumber, courier *string) (*domain.Order, error) {
	return r.update(ctx, `
		UPDATE orders
		SET fulfillment_status = $2,
		    tracking_number = $3,
		    courier = $4
		WHERE id = $1
	`, id, status, nullableString(trackingNumber), nullableString(courier))
}

// UpdateNotes replaces the internal notes
func (r *orderRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*domain.Order, error) {
	return r.update(ctx, `UPDATE orders SET notes = $2 WHERE id = $1`, id, notes)
}

func (r *orderRepository) update(ctx context.Context, query string, id uuid.UUID, args ...interface{}) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrOrderNotFound
	}

	return r.FindByID(ctx, id)
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var idempotencyKey, phone, trackingNumber, courier sql.NullString
	var address []byte
	var payment []byte

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&idempotencyKey,
		&order.CustomerID,
		&order.Email,
		&phone,
		&address,
		&payment,
		&order.Subtotal,
		&order.ShippingFee,
		&order.Total,
		&order.PaymentStatus,
		&order.FulfillmentStatus,
		&trackingNumber,
		&courier,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	if len(payment) > 0 {
		order.PaymentDetails = &domain.PaymentDetails{}
		if err := json.Unmarshal(payment, order.PaymentDetails); err != nil {
			return nil, fmt.Errorf("failed to decode payment details: %w", err)
		}
	}

	order.IdempotencyKey = stringPtr(idempotencyKey)
	order.Phone = stringPtr(phone)
	order.TrackingNumber = stringPtr(trackingNumber)
	order.Courier = stringPtr(courier)

	return order, nil
}

func nullableJSON(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}
