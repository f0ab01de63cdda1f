package repository

import (
	"context"
	"testing"
	"time"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	resetDB(t)
	repo := NewCatalogRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(title string, description string, basePrice int64, tags []string) bool {
			now := time.Now().UTC().Truncate(time.Microsecond)
			product := &domain.Product{
				ID:          uuid.New(),
				Slug:        "p-" + uuid.NewString(),
				Title:       title,
				Description: description,
				Category:    "Bottoms",
				Status:      domain.ProductStatusActive,
				BasePrice:   basePrice,
				Tags:        tags,
				Images:      []string{},
				CreatedAt:   now,
				UpdatedAt:   now,
			}

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Title != product.Title || retrieved.Description != product.Description {
				t.Logf("FAIL: text mismatch %q/%q", retrieved.Title, retrieved.Description)
				return false
			}
			if retrieved.BasePrice != product.BasePrice {
				t.Logf("FAIL: BasePrice mismatch. Expected %d, got %d", product.BasePrice, retrieved.BasePrice)
				return false
			}
			if len(retrieved.Tags) != len(tags) {
				t.Logf("FAIL: Tags mismatch. Expected %v, got %v", tags, retrieved.Tags)
				return false
			}
			for i := range tags {
				if retrieved.Tags[i] != tags[i] {
					t.Logf("FAIL: Tags mismatch. Expected %v, got %v", tags, retrieved.Tags)
					return false
				}
			}
			return retrieved.CompareAtPrice == nil && retrieved.DeletedAt == nil
		},
		gen.RegexMatch(`[A-Za-z ]{1,40}`),
		gen.AlphaString(),
		gen.Int64Range(0, 100000),
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCatalogRepository_FindPurchasableVariants(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewCatalogRepository(testDB)

	active := seedProduct(t, domain.ProductStatusActive, 1200)
	override := int64(999)
	v1 := seedVariant(t, active.ID, "M", "Black", 4, &override)
	inactive := seedVariant(t, active.ID, "L", "Black", 4, nil)
	_, err := testDB.Exec(`UPDATE variants SET is_active = FALSE WHERE id = $1`, inactive.ID)
	require.NoError(t, err)

	draft := seedProduct(t, domain.ProductStatusDraft, 1200)
	seedVariant(t, draft.ID, "M", "Black", 4, nil)

	deleted := seedProduct(t, domain.ProductStatusActive, 1200)
	seedVariant(t, deleted.ID, "M", "Black", 4, nil)
	_, err = testDB.Exec(`UPDATE products SET deleted_at = NOW() WHERE id = $1`, deleted.ID)
	require.NoError(t, err)

	variants, err := repo.FindPurchasableVariants(ctx, []string{
		active.ID.String(), draft.ID.String(), deleted.ID.String(), "not-a-uuid",
	})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, v1.ID, variants[0].ID)
	assert.Equal(t, active.Title, variants[0].ProductTitle)
	assert.Equal(t, int64(1200), variants[0].BasePrice)
	assert.Equal(t, int64(999), variants[0].UnitPrice())

	empty, err := repo.FindPurchasableVariants(ctx, []string{"nope"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCatalogRepository_ListActive(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewCatalogRepository(testDB)

	active := seedProduct(t, domain.ProductStatusActive, 800)
	seedVariant(t, active.ID, "S", "White", 3, nil)
	seedVariant(t, active.ID, "M", "White", 0, nil)
	seedProduct(t, domain.ProductStatusArchived, 800)

	products, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, active.ID, products[0].ID)
	assert.Len(t, products[0].Variants, 2)
	assert.Equal(t, []string{"new"}, products[0].Tags)

	err = repo.Create(ctx, &domain.Product{ID: uuid.New(), Slug: active.Slug, Title: "dup", Status: domain.ProductStatusDraft})
	assert.ErrorIs(t, err, ErrProductAlreadyExists)
}

func TestCatalogRepository_VariantOptionsAreCaseInsensitive(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewCatalogRepository(testDB)

	product := seedProduct(t, domain.ProductStatusActive, 800)
	seedVariant(t, product.ID, "M", "Black", 3, nil)

	now := time.Now()
	dup := &domain.Variant{
		ID:        uuid.New(),
		ProductID: product.ID,
		Size:      "m",
		Color:     "BLACK",
		SKU:       "RR-" + uuid.NewString()[:8],
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	assert.ErrorIs(t, repo.CreateVariant(ctx, dup), ErrVariantAlreadyExists)

	dup.Size = "L"
	assert.NoError(t, repo.CreateVariant(ctx, dup))
}
