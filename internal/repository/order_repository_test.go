package repository

import (
	"context"
	"testing"
	"time"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, number string) *domain.Order {
	t.Helper()
	ctx := context.Background()

	product := seedProduct(t, domain.ProductStatusActive, 900)
	variant := seedVariant(t, product.ID, "M", "Black", 10, nil)

	customerID, err := NewCustomerRepository(testDB).UpsertByEmail(ctx, &domain.Customer{
		Email: "buyer-" + uuid.NewString()[:8] + "@example.com",
		Name:  "Buyer",
	})
	require.NoError(t, err)

	last4 := "4242"
	now := time.Now()
	orderID := uuid.New()
	return &domain.Order{
		ID:          orderID,
		OrderNumber: number,
		CustomerID:  customerID,
		Email:       "buyer@example.com",
		ShippingAddress: domain.ShippingAddress{
			Name:        "Buyer",
			AddressLine: "12 Mabini St",
			HouseNumber: "12",
			StreetName:  "Mabini St",
			City:        "Quezon City",
			Province:    "Metro Manila",
			PostalCode:  "1100",
		},
		PaymentDetails:    &domain.PaymentDetails{Method: "card", CardholderName: "Buyer", Last4: &last4},
		Subtotal:          1800,
		ShippingFee:       150,
		Total:             1950,
		PaymentStatus:     domain.PaymentStatusUnpaid,
		FulfillmentStatus: domain.FulfillmentUnfulfilled,
		Items: []domain.OrderItem{{
			ID:            uuid.New(),
			ProductID:     product.ID,
			VariantID:     variant.ID,
			NameSnapshot:  product.Title,
			SKUSnapshot:   variant.SKU,
			PriceSnapshot: 900,
			Qty:           2,
			CreatedAt:     now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testDB)

	order := newTestOrder(t, "RR-TEST-AAAAAA")
	key := "idem-1"
	order.IdempotencyKey = &key
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)
	assert.Equal(t, int64(1950), found.Total)
	assert.Equal(t, order.ShippingAddress, found.ShippingAddress)
	require.NotNil(t, found.PaymentDetails)
	assert.Equal(t, "4242", *found.PaymentDetails.Last4)
	require.Len(t, found.Items, 1)
	assert.Equal(t, int64(1800), found.Items[0].LineTotal())
	assert.Nil(t, found.Phone)

	byKey, err := repo.FindByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byKey.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderRepository_UniqueViolations(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testDB)

	first := newTestOrder(t, "RR-TEST-BBBBBB")
	key := "idem-2"
	first.IdempotencyKey = &key
	require.NoError(t, repo.Create(ctx, first))

	sameNumber := newTestOrder(t, "RR-TEST-BBBBBB")
	assert.ErrorIs(t, repo.Create(ctx, sameNumber), ErrOrderNumberTaken)

	sameKey := newTestOrder(t, "RR-TEST-CCCCCC")
	sameKey.IdempotencyKey = &key
	assert.ErrorIs(t, repo.Create(ctx, sameKey), ErrIdempotencyKeyTaken)
}

func TestOrderRepository_ListAndUpdate(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testDB)

	order := newTestOrder(t, "RR-TEST-DDDDDD")
	require.NoError(t, repo.Create(ctx, order))

	paid, err := repo.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)

	tracking, courier := "TRK123", "LBC"
	shipped, err := repo.UpdateFulfillment(ctx, order.ID, domain.FulfillmentShipped, &tracking, &courier)
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentShipped, shipped.FulfillmentStatus)
	require.NotNil(t, shipped.TrackingNumber)
	assert.Equal(t, "TRK123", *shipped.TrackingNumber)

	delivered, err := repo.UpdateFulfillment(ctx, order.ID, domain.FulfillmentDelivered, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentDelivered, delivered.FulfillmentStatus)
	assert.Nil(t, delivered.Courier)
	assert.Nil(t, delivered.TrackingNumber)

	noted, err := repo.UpdateNotes(ctx, order.ID, "gift wrap")
	require.NoError(t, err)
	assert.Equal(t, "gift wrap", noted.Notes)

	summaries, err := repo.List(ctx, domain.OrderFilter{PaymentStatus: domain.PaymentStatusPaid})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].ItemCount)

	none, err := repo.List(ctx, domain.OrderFilter{FulfillmentStatus: domain.FulfillmentCancelled})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.UpdateNotes(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
