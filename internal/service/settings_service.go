package service

import (
	"context"
	"fmt"
	"strings"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SettingsInput is the editable part of the store settings
type SettingsInput struct {
	StoreName             string             `json:"storeName" validate:"required,max=255"`
	ContactEmail          string             `json:"contactEmail" validate:"omitempty,email,max=255"`
	ContactPhone          string             `json:"contactPhone" validate:"max=50"`
	ContactAddress        string             `json:"contactAddress"`
	AnnouncementBarText   string             `json:"announcementBarText"`
	ShippingPolicy        string             `json:"shippingPolicy"`
	ReturnsPolicy         string             `json:"returnsPolicy"`
	PrivacyPolicy         string             `json:"privacyPolicy"`
	TermsPolicy           string             `json:"termsPolicy"`
	SocialLinks           domain.SocialLinks `json:"socialLinks"`
	FeaturedCollectionIDs []string           `json:"featuredCollectionIds"`
	FeaturedProductIDs    []string           `json:"featuredProductIds"`
}

// PublicSettings is what the storefront may read
type PublicSettings struct {
	StoreName           string             `json:"storeName"`
	ContactEmail        string             `json:"contactEmail"`
	ContactPhone        string             `json:"contactPhone"`
	ContactAddress      string             `json:"contactAddress"`
	AnnouncementBarText string             `json:"announcementBarText"`
	ShippingPolicy      string             `json:"shippingPolicy"`
	ReturnsPolicy       string             `json:"returnsPolicy"`
	PrivacyPolicy       string             `json:"privacyPolicy"`
	TermsPolicy         string             `json:"termsPolicy"`
	SocialLinks         domain.SocialLinks `json:"socialLinks"`
	FeaturedProductIDs  []string           `json:"featuredProductIds"`
}

// SettingsService reads and updates the store settings singleton
type SettingsService interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Public(ctx context.Context) (*PublicSettings, error)
	Update(ctx context.Context, actor uuid.UUID, input SettingsInput) (*domain.Settings, error)
}

type settingsService struct {
	tx           TxRunner
	settingsRepo repository.SettingsRepository
	auditRepo    repository.AuditRepository
	logger       *zap.Logger
}

// NewSettingsService creates a new instance of SettingsService
func NewSettingsService(tx TxRunner, settingsRepo repository.SettingsRepository, auditRepo repository.AuditRepository, logger *zap.Logger) SettingsService {
	return &settingsService{tx: tx, settingsRepo: settingsRepo, auditRepo: auditRepo, logger: logger}
}

// Get returns the settings, creating the defaults on first read
func (s *settingsService) Get(ctx context.Context) (*domain.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

func (s *settingsService) Public(ctx context.Context) (*PublicSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return ToPublicSettings(settings), nil
}

func (s *settingsService) Update(ctx context.Context, actor uuid.UUID, input SettingsInput) (*domain.Settings, error) {
	next := &domain.Settings{
		StoreName:             strings.TrimSpace(input.StoreName),
		ContactEmail:          strings.TrimSpace(input.ContactEmail),
		ContactPhone:          strings.TrimSpace(input.ContactPhone),
		ContactAddress:        strings.TrimSpace(input.ContactAddress),
		AnnouncementBarText:   strings.TrimSpace(input.AnnouncementBarText),
		ShippingPolicy:        input.ShippingPolicy,
		ReturnsPolicy:         input.ReturnsPolicy,
		PrivacyPolicy:         input.PrivacyPolicy,
		TermsPolicy:           input.TermsPolicy,
		SocialLinks:           input.SocialLinks,
		FeaturedCollectionIDs: compactIDs(input.FeaturedCollectionIDs),
		FeaturedProductIDs:    compactIDs(input.FeaturedProductIDs),
	}
	if next.StoreName == "" {
		next.StoreName = domain.DefaultStoreName
	}

	var updated *domain.Settings
	err := s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		updated, err = s.settingsRepo.WithTx(tx).Update(ctx, next)
		if err != nil {
			return err
		}
		return recordAudit(ctx, s.auditRepo.WithTx(tx), actor,
			domain.AuditSettingsUpdate, domain.AuditEntitySettings, updated.ID.String(), input)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.logger.Info("Settings updated", zap.String("actor_admin_id", actor.String()))
	return updated, nil
}

func ToPublicSettings(s *domain.Settings) *PublicSettings {
	featured := s.FeaturedProductIDs
	if featured == nil {
		featured = []string{}
	}
	return &PublicSettings{
		StoreName:           s.StoreName,
		ContactEmail:        s.ContactEmail,
		ContactPhone:        s.ContactPhone,
		ContactAddress:      s.ContactAddress,
		AnnouncementBarText: s.AnnouncementBarText,
		ShippingPolicy:      s.ShippingPolicy,
		ReturnsPolicy:       s.ReturnsPolicy,
		PrivacyPolicy:       s.PrivacyPolicy,
		TermsPolicy:         s.TermsPolicy,
		SocialLinks:         s.SocialLinks,
		FeaturedProductIDs:  featured,
	}
}

func compactIDs(ids []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
