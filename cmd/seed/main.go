package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"reverie-revival/internal/config"
	"reverie-revival/internal/database"
	"reverie-revival/internal/domain"
	"reverie-revival/internal/logger"
	"reverie-revival/internal/repository"
	"reverie-revival/internal/service"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	seedStockQty          = 20
	seedLowStockThreshold = 5
)

type seedProduct struct {
	Title          string
	Category       string
	Description    string
	BasePrice      int64
	CompareAtPrice int64
	Badge          string
	Sizes          []string
	Colors         []string
}

var catalog = []seedProduct{
	{
		Title:       "Revival Logo Tee",
		Category:    "T-Shirts",
		Description: "Heavyweight cotton tee with the puff-print Revival logo.",
		BasePrice:   850,
		Badge:       "New",
		Sizes:       []string{"S", "M", "L", "XL"},
		Colors:      []string{"Black", "White"},
	},
	{
		Title:          "Dreamstate Hoodie",
		Category:       "Hoodies",
		Description:    "Brushed fleece hoodie with an embroidered chest hit.",
		BasePrice:      1950,
		CompareAtPrice: 2400,
		Badge:          "Sale",
		Sizes:          []string{"M", "L", "XL"},
		Colors:         []string{"Charcoal", "Olive"},
	},
	{
		Title:       "Night Market Cargo Pants",
		Category:    "Bottoms",
		Description: "Relaxed ripstop cargos with six utility pockets.",
		BasePrice:   1650,
		Sizes:       []string{"28", "30", "32", "34"},
		Colors:      []string{"Black", "Olive"},
	},
	{
		Title:       "Reverie Dad Cap",
		Category:    "Accessories",
		Description: "Unstructured six-panel cap with a brass buckle.",
		BasePrice:   550,
		Badge:       "Bestseller",
		Sizes:       []string{"One Size"},
		Colors:      []string{"Black", "White", "Olive"},
	},
}

func skuPart(value string) string {
	return strings.ToUpper(service.Slugify(value))
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB().DB, cfg.Database.MigrationsDir, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := database.GetMigrationStatus(db.DB().DB, cfg.Database.MigrationsDir); err != nil {
		log.Warn("Failed to read migration status", zap.Error(err))
	}

	if err := seedAdmin(ctx, db.DB(), cfg, log); err != nil {
		log.Fatal("Failed to seed admin", zap.Error(err))
	}

	// The first read creates the default settings row
	settings, err := repository.NewSettingsRepository(db.DB()).Get(ctx)
	if err != nil {
		log.Fatal("Failed to seed settings", zap.Error(err))
	}
	log.Info("Settings ready", zap.String("store_name", settings.StoreName))

	created, err := seedCatalog(ctx, db.DB(), log)
	if err != nil {
		log.Fatal("Failed to seed catalog", zap.Error(err))
	}

	log.Info("Seed completed", zap.Int("products_created", created))
}

func seedAdmin(ctx context.Context, db *sqlx.DB, cfg *config.Config, log *zap.Logger) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	admins := service.NewAdminService(
		repository.NewAdminRepository(db),
		repository.NewAdminSessionRepository(db),
		service.TokenSettings{Secret: cfg.JWT.Secret},
	)

	admin, err := admins.CreateAdmin(ctx, email, password, os.Getenv("ADMIN_NAME"))
	if errors.Is(err, repository.ErrAdminAlreadyExists) {
		log.Info("Admin already exists", zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("Admin created", zap.String("admin_id", admin.ID.String()), zap.String("email", admin.Email))
	return nil
}

// seedCatalog creates every sample product whose slug is not taken yet, each
// with its variants in one transaction.
func seedCatalog(ctx context.Context, db *sqlx.DB, log *zap.Logger) (int, error) {
	catalogRepo := repository.NewCatalogRepository(db)
	tx := database.NewTransactor(db)
	created := 0

	for _, item := range catalog {
		now := time.Now()
		product := &domain.Product{
			ID:          uuid.New(),
			Slug:        service.Slugify(item.Title),
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			Status:      domain.ProductStatusActive,
			BasePrice:   item.BasePrice,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if item.CompareAtPrice > 0 {
			compareAt := item.CompareAtPrice
			product.CompareAtPrice = &compareAt
		}
		if item.Badge != "" {
			product.Tags = []string{item.Badge}
		}

		err := tx.WithinTx(ctx, func(sqlTx *sqlx.Tx) error {
			repo := catalogRepo.WithTx(sqlTx)
			if err := repo.Create(ctx, product); err != nil {
				return err
			}

			for _, size := range item.Sizes {
				for _, color := range item.Colors {
					variant := &domain.Variant{
						ID:                uuid.New(),
						ProductID:         product.ID,
						Size:              size,
						Color:             color,
						SKU:               fmt.Sprintf("RR-%s-%s-%s", skuPart(product.Slug), skuPart(size), skuPart(color)),
						StockQty:          seedStockQty,
						LowStockThreshold: seedLowStockThreshold,
						IsActive:          true,
						CreatedAt:         now,
						UpdatedAt:         now,
					}
					if err := repo.CreateVariant(ctx, variant); err != nil {
						return fmt.Errorf("variant %s: %w", variant.SKU, err)
					}
				}
			}
			return nil
		})

		if errors.Is(err, repository.ErrProductAlreadyExists) {
			log.Debug("Product already seeded", zap.String("slug", product.Slug))
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", product.Slug, err)
		}

		created++
		log.Info("Product seeded", zap.String("slug", product.Slug), zap.Int("variants", len(item.Sizes)*len(item.Colors)))
	}

	return created, nil
}
