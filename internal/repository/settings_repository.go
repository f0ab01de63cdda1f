package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SettingsID is the fixed primary key of the settings singleton
var SettingsID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("reverie-revival/settings"))

// SettingsRepository reads and writes the store settings singleton
type SettingsRepository interface {
	WithTx(tx *sqlx.Tx) SettingsRepository
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, settings *domain.Settings) (*domain.Settings, error)
}

type settingsRepository struct {
	db Querier
}

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(db Querier) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) WithTx(tx *sqlx.Tx) SettingsRepository {
	return &settingsRepository{db: tx}
}

const settingsColumns = `id, store_name, contact_email, contact_phone, contact_address,
	announcement_bar_text, shipping_policy, returns_policy, privacy_policy, terms_policy,
	social_links, featured_collection_ids, featured_product_ids, created_at, updated_at`

// Get returns the settings row, inserting the defaults on first read
func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, store_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, SettingsID, domain.DefaultStoreName)
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	settings, err := scanSettings(r.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM settings WHERE id = $1`, SettingsID))
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

// Update overwrites every editable field of the singleton
func (r *settingsRepository) Update(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	if _, err := r.Get(ctx); err != nil {
		return nil, err
	}

	social, err := json.Marshal(settings.SocialLinks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode social links: %w", err)
	}

	updated, err := scanSettings(r.db.QueryRowContext(ctx, `
		UPDATE settings
		SET store_name = $2, contact_email = $3, contact_phone = $4, contact_address = $5,
		    announcement_bar_text = $6, shipping_policy = $7, returns_policy = $8,
		    privacy_policy = $9, terms_policy = $10, social_links = $11,
		    featured_collection_ids = $12, featured_product_ids = $13
		WHERE id = $1
		RETURNING `+settingsColumns,
		SettingsID,
		settings.StoreName,
		settings.ContactEmail,
		settings.ContactPhone,
		settings.ContactAddress,
		settings.AnnouncementBarText,
		settings.ShippingPolicy,
		settings.ReturnsPolicy,
		settings.PrivacyPolicy,
		settings.TermsPolicy,
		string(social),
		nonNilStrings(settings.FeaturedCollectionIDs),
		nonNilStrings(settings.FeaturedProductIDs),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	return updated, nil
}

func scanSettings(row rowScanner) (*domain.Settings, error) {
	settings := &domain.Settings{}
	var social []byte

	err := row.Scan(
		&settings.ID,
		&settings.StoreName,
		&settings.ContactEmail,
		&settings.ContactPhone,
		&settings.ContactAddress,
		&settings.AnnouncementBarText,
		&settings.ShippingPolicy,
		&settings.ReturnsPolicy,
		&settings.PrivacyPolicy,
		&settings.TermsPolicy,
		&social,
		textArray(&settings.FeaturedCollectionIDs),
		textArray(&settings.FeaturedProductIDs),
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(social) > 0 {
		if err := json.Unmarshal(social, &settings.SocialLinks); err != nil {
			return nil, fmt.Errorf("failed to decode social links: %w", err)
		}
	}

	return settings, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
