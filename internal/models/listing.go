package models

import (
	"time"

	"gorm.io/datatypes"
)

type ListingStatus string

const (
	ListingStatusActive      ListingStatus = "active"
	ListingStatusInactive    ListingStatus = "inactive"
	ListingStatusDeprecated  ListingStatus = "deprecated"
	ListingStatusBeta        ListingStatus = "beta"
	ListingStatusMaintenance ListingStatus = "maintenance"
)

type ListingCategory string

const (
	CategoryNLP            ListingCategory = "nlp"
	CategoryComputerVision ListingCategory = "computer_vision"
	CategorySpeech         ListingCategory = "speech"
	CategoryRecommendation ListingCategory = "recommendation"
	CategoryForecasting    ListingCategory = "forecasting"
	CategoryClassification ListingCategory = "classification"
	CategoryGeneration     ListingCategory = "generation"
	CategoryTranslation    ListingCategory = "translation"
	CategorySentiment      ListingCategory = "sentiment"
	CategoryOther          ListingCategory = "other"
)

type PricingType string

const (
	PricingPerRequest   PricingType = "per_request"
	PricingPerToken     PricingType = "per_token"
	PricingSubscription PricingType = "subscription"
	PricingFree         PricingType = "free"
)

// ModelListing is a catalog entry for one invocable model, owned by a
// developer. The rolling counters (TotalRequests, AverageResponseTime,
// SuccessRate) are written only by the metering engine and the rating
// aggregates (AverageRating, TotalReviews) only by the rating
// recompute; everything else is developer-editable metadata.
type ModelListing struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DeveloperID uint      `gorm:"index;not null" json:"developer_id"`
	Developer   Developer `json:"-"`

	Name        string          `gorm:"index;not null" json:"name"`
	Description string          `json:"description"`
	Category    ListingCategory `gorm:"index;not null;default:'other'" json:"category"`

	APIName     string `gorm:"uniqueIndex;not null" json:"api_name"`
	APIEndpoint string `gorm:"not null" json:"api_endpoint"`
	APIVersion  string `gorm:"not null;default:'v1'" json:"api_version"`

	Tags               StringArray `gorm:"type:text" json:"tags"`
	SupportedLanguages StringArray `gorm:"type:text" json:"supported_languages"`

	ThumbnailURL     string         `json:"thumbnail_url"`
	DocumentationURL string         `json:"documentation_url"`
	ExampleRequest   datatypes.JSON `json:"example_request"`
	ExampleResponse  datatypes.JSON `json:"example_response"`

	PricingType              PricingType `gorm:"not null;default:'per_request'" json:"pricing_type"`
	PricePerRequest          float64     `gorm:"not null;default:0.0001" json:"price_per_request"`
	PricePerToken            float64     `gorm:"not null;default:0.000001" json:"price_per_token"`
	MonthlySubscriptionPrice float64     `gorm:"not null;default:0" json:"monthly_subscription_price"`

	RateLimitPerMinute int64 `gorm:"not null;default:60" json:"rate_limit_per_minute"`
	RateLimitPerHour   int64 `gorm:"not null;default:1000" json:"rate_limit_per_hour"`
	RateLimitPerDay    int64 `gorm:"not null;default:10000" json:"rate_limit_per_day"`

	MaxTokens int64 `json:"max_tokens"`

	Status   ListingStatus `gorm:"index;not null;default:'active'" json:"status"`
	IsPublic bool          `gorm:"index;not null;default:true" json:"is_public"`

	// Rolling aggregates, metering engine only.
	TotalRequests       int64   `gorm:"not null;default:0" json:"total_requests"`
	AverageResponseTime float64 `gorm:"not null;default:0" json:"average_response_time"`
	SuccessRate         float64 `gorm:"not null;default:100" json:"success_rate"`

	// Rating aggregates, rating recompute only.
	AverageRating float64 `gorm:"index;not null;default:0" json:"average_rating"`
	TotalReviews  int64   `gorm:"not null;default:0" json:"total_reviews"`
}
