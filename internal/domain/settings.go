package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultStoreName = "Reverie Revival"

type SocialLinks struct {
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	TikTok    string `json:"tiktok"`
}

// Settings is the store-wide singleton
type Settings struct {
	ID                    uuid.UUID   `json:"id"`
	StoreName             string      `json:"storeName"`
	ContactEmail          string      `json:"contactEmail"`
	ContactPhone          string      `json:"contactPhone"`
	ContactAddress        string      `json:"contactAddress"`
	AnnouncementBarText   string      `json:"announcementBarText"`
	ShippingPolicy        string      `json:"shippingPolicy"`
	ReturnsPolicy         string      `json:"returnsPolicy"`
	PrivacyPolicy         string      `json:"privacyPolicy"`
	TermsPolicy           string      `json:"termsPolicy"`
	SocialLinks           SocialLinks `json:"socialLinks"`
	FeaturedCollectionIDs []string    `json:"featuredCollectionIds"`
	FeaturedProductIDs    []string    `json:"featuredProductIds"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}
