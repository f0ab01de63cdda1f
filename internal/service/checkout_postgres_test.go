package service_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reverie-revival/internal/database"
	"reverie-revival/internal/database/postgrestest"
	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"
	"reverie-revival/internal/service"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingLedger fails the decrement of one variant after the others ran
type failingLedger struct {
	repository.InventoryLedger
	failFor uuid.UUID
}

func (l *failingLedger) WithTx(tx *sqlx.Tx) repository.InventoryLedger {
	return &failingLedger{InventoryLedger: l.InventoryLedger.WithTx(tx), failFor: l.failFor}
}

func (l *failingLedger) Apply(ctx context.Context, change domain.StockChange) (*domain.StockChangeResult, error) {
	if change.VariantID == l.failFor {
		return nil, errors.New("movement insert failed")
	}
	return l.InventoryLedger.Apply(ctx, change)
}

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres checkout tests in short mode")
	}

	db, teardown, err := postgrestest.Start(context.Background())
	t.Cleanup(func() {
		if teardown != nil {
			_ = teardown(context.Background())
		}
	})
	require.NoError(t, err)
	return db
}

func newPostgresCheckout(db *sqlx.DB, ledger repository.InventoryLedger) service.CheckoutService {
	return service.NewCheckoutService(
		database.NewTransactor(db),
		repository.NewCatalogRepository(db),
		repository.NewOrderRepository(db),
		repository.NewCustomerRepository(db),
		ledger,
		service.CheckoutOptions{OrderPrefix: "RR"},
		zap.NewNop(),
	)
}

func seedCatalog(t *testing.T, db *sqlx.DB, stock int, sizes ...string) (*domain.Product, []domain.Variant) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewCatalogRepository(db)
	now := time.Now()

	product := &domain.Product{
		ID:        uuid.New(),
		Slug:      "tee-" + uuid.NewString()[:8],
		Title:     "Revival Logo Tee",
		Category:  "T-Shirts",
		Status:    domain.ProductStatusActive,
		BasePrice: 850,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, product))

	variants := make([]domain.Variant, 0, len(sizes))
	for _, size := range sizes {
		v := domain.Variant{
			ID:                uuid.New(),
			ProductID:         product.ID,
			Size:              size,
			Color:             "Black",
			SKU:               "RR-TEE-" + size + "-" + uuid.NewString()[:6],
			StockQty:          stock,
			LowStockThreshold: 2,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		require.NoError(t, repo.CreateVariant(ctx, &v))
		variants = append(variants, v)
	}
	return product, variants
}

func checkoutFor(email string, items ...service.CheckoutItem) service.CheckoutInput {
	return service.CheckoutInput{
		Customer: service.CheckoutCustomer{FirstName: "Ana", LastName: "Cruz", Email: email},
		Shipping: service.CheckoutShipping{
			HouseNumber: "12",
			StreetName:  "Mabini St",
			Region:      "NCR",
			Province:    "Metro Manila",
			City:        "Quezon City",
			Barangay:    "Loyola Heights",
			PostalCode:  "1108",
		},
		Items: items,
	}
}

func line(v domain.Variant, qty int) service.CheckoutItem {
	return service.CheckoutItem{ProductID: v.ProductID.String(), Size: v.Size, Color: v.Color, Quantity: qty}
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func stockOf(t *testing.T, db *sqlx.DB, id uuid.UUID) int {
	t.Helper()
	var qty int
	require.NoError(t, db.Get(&qty, `SELECT stock_qty FROM variants WHERE id = $1`, id))
	return qty
}

func TestCheckoutPostgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	t.Run("failure on a later line rolls back the whole order", func(t *testing.T) {
		require.NoError(t, postgrestest.Truncate(ctx, db))
		_, variants := seedCatalog(t, db, 10, "S", "M")

		// Decrements run in variant id order; fail whichever comes second
		second := variants[1]
		if bytes.Compare(variants[0].ID[:], variants[1].ID[:]) > 0 {
			second = variants[0]
		}
		ledger := &failingLedger{InventoryLedger: repository.NewInventoryLedger(db), failFor: second.ID}
		svc := newPostgresCheckout(db, ledger)

		_, err := svc.PlaceOrder(ctx, checkoutFor("ana@example.com", line(variants[0], 2), line(variants[1], 3)), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrTransactionFailure)

		for _, table := range []string{"orders", "order_items", "stock_movements", "customers"} {
			assert.Zero(t, countRows(t, db, table), table)
		}
		assert.Equal(t, 10, stockOf(t, db, variants[0].ID))
		assert.Equal(t, 10, stockOf(t, db, variants[1].ID))
	})

	t.Run("concurrent checkouts of the last units", func(t *testing.T) {
		require.NoError(t, postgrestest.Truncate(ctx, db))
		_, variants := seedCatalog(t, db, 5, "M")
		v := variants[0]
		svc := newPostgresCheckout(db, repository.NewInventoryLedger(db))

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			succeeded  int
			outOfStock int
			other      []error
		)
		for _, email := range []string{"ana@example.com", "ben@example.com"} {
			wg.Add(1)
			go func(email string) {
				defer wg.Done()
				_, err := svc.PlaceOrder(ctx, checkoutFor(email, line(v, 3)), "")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, service.ErrOutOfStock):
					outOfStock++
				default:
					other = append(other, err)
				}
			}(email)
		}
		wg.Wait()

		require.Empty(t, other)
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, outOfStock)
		assert.Equal(t, 2, stockOf(t, db, v.ID))
		assert.Equal(t, 1, countRows(t, db, "orders"))
		assert.Equal(t, 1, countRows(t, db, "stock_movements"))
		assert.Equal(t, 1, countRows(t, db, "customers"))
	})
}
