package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this slug already exists")
	ErrVariantAlreadyExists = errors.New("variant with this sku or size/color already exists")
)

// CatalogRepository defines the interface for product and variant data access
type CatalogRepository interface {
	WithTx(tx *sqlx.Tx) CatalogRepository
	Create(ctx context.Context, product *domain.Product) error
	CreateVariant(ctx context.Context, variant *domain.Variant) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindPurchasableVariants(ctx context.Context, productIDs []string) ([]domain.PurchasableVariant, error)
	ListActive(ctx context.Context) ([]domain.CatalogProduct, error)
}

type catalogRepository struct {
	db Querier
}

// NewCatalogRepository creates a new instance of CatalogRepository
func NewCatalogRepository(db Querier) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) WithTx(tx *sqlx.Tx) CatalogRepository {
	return &catalogRepository{db: tx}
}

const productColumns = `p.id, p.slug, p.title, p.description, p.category, p.status, p.base_price,
	p.compare_at_price, p.tags, p.images, p.deleted_at, p.created_at, p.updated_at`

// Create inserts a new product
func (r *catalogRepository) Create(ctx context.Context, product *domain.Product) error {
	tags := product.Tags
	if tags == nil {
		tags = []string{}
	}
	images := product.Images
	if images == nil {
		images = []string{}
	}

	query := `
		INSERT INTO products (id, slug, title, description, category, status, base_price,
		                      compare_at_price, tags, images, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Slug,
		product.Title,
		product.Description,
		product.Category,
		product.Status,
		product.BasePrice,
		product.CompareAtPrice,
		tags,
		images,
		product.DeletedAt,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// CreateVariant inserts a variant. Its opening stock is the baseline the
// stock movement ledger sums on top of.
func (r *catalogRepository) CreateVariant(ctx context.Context, variant *domain.Variant) error {
	query := `
		INSERT INTO variants (id, product_id, size, color, sku, stock_qty, low_stock_threshold,
		                      price_override, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		variant.ID,
		variant.ProductID,
		variant.Size,
		variant.Color,
		variant.SKU,
		variant.StockQty,
		variant.LowStockThreshold,
		variant.PriceOverride,
		variant.IsActive,
		variant.CreatedAt,
		variant.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrVariantAlreadyExists
		}
		return fmt.Errorf("failed to create variant: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID, including soft-deleted ones
func (r *catalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindPurchasableVariants returns active variants of ACTIVE, non-deleted
// products among productIDs. Ids that are not valid UUIDs simply match nothing.
func (r *catalogRepository) FindPurchasableVariants(ctx context.Context, productIDs []string) ([]domain.PurchasableVariant, error) {
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if _, err := uuid.Parse(id); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []domain.PurchasableVariant{}, nil
	}

	query := `
		SELECT v.id, v.product_id, v.size, v.color, v.sku, v.stock_qty, v.low_stock_threshold,
		       v.price_override, v.is_active, v.created_at, v.updated_at,
		       p.title AS product_title, p.base_price
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.product_id = ANY($1::uuid[])
		  AND v.is_active = TRUE
		  AND p.status = 'ACTIVE'
		  AND p.deleted_at IS NULL
	`

	variants := []domain.PurchasableVariant{}
	if err := sqlx.SelectContext(ctx, r.db, &variants, query, ids); err != nil {
		return nil, fmt.Errorf("failed to find purchasable variants: %w", err)
	}

	return variants, nil
}

// ListActive returns ACTIVE, non-deleted products with all their variants, newest first
func (r *catalogRepository) ListActive(ctx context.Context) ([]domain.CatalogProduct, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		WHERE p.status = 'ACTIVE' AND p.deleted_at IS NULL
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.CatalogProduct{}
	index := map[uuid.UUID]int{}
	ids := []string{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		index[product.ID] = len(products)
		ids = append(ids, product.ID.String())
		products = append(products, domain.CatalogProduct{Product: *product, Variants: []domain.Variant{}})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if len(ids) == 0 {
		return products, nil
	}

	variants := []domain.Variant{}
	err = sqlx.SelectContext(ctx, r.db, &variants, `
		SELECT id, product_id, size, color, sku, stock_qty, low_stock_threshold,
		       price_override, is_active, created_at, updated_at
		FROM variants
		WHERE product_id = ANY($1::uuid[])
		ORDER BY created_at, sku
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	for _, v := range variants {
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var compareAt sql.NullInt64
	var deletedAt sql.NullTime

	err := row.Scan(
		&product.ID,
		&product.Slug,
		&product.Title,
		&product.Description,
		&product.Category,
		&product.Status,
		&product.BasePrice,
		&compareAt,
		textArray(&product.Tags),
		textArray(&product.Images),
		&deletedAt,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if compareAt.Valid {
		v := compareAt.Int64
		product.CompareAtPrice = &v
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		product.DeletedAt = &t
	}

	return product, nil
}
