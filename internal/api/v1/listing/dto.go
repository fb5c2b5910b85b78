package listing

import (
	"time"

	"modelmarket-backend/internal/models"
)

type ListingItem struct {
	ID                  uint                   `json:"id"`
	DeveloperID         uint                   `json:"developer_id"`
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	Category            models.ListingCategory `json:"category"`
	APIName             string                 `json:"api_name"`
	APIEndpoint         string                 `json:"api_endpoint"`
	APIVersion          string                 `json:"api_version"`
	Tags                models.StringArray     `json:"tags"`
	SupportedLanguages  models.StringArray     `json:"supported_languages"`
	ThumbnailURL        string                 `json:"thumbnail_url"`
	DocumentationURL    string                 `json:"documentation_url"`
	PricingType         models.PricingType     `json:"pricing_type"`
	PricePerRequest     float64                `json:"price_per_request"`
	PricePerToken       float64                `json:"price_per_token"`
	MonthlyPrice        float64                `json:"monthly_subscription_price"`
	RateLimitPerMinute  int64                  `json:"rate_limit_per_minute"`
	RateLimitPerHour    int64                  `json:"rate_limit_per_hour"`
	RateLimitPerDay     int64                  `json:"rate_limit_per_day"`
	MaxTokens           int64                  `json:"max_tokens"`
	Status              models.ListingStatus   `json:"status"`
	IsPublic            bool                   `json:"is_public"`
	TotalRequests       int64                  `json:"total_requests"`
	AverageResponseTime float64                `json:"average_response_time"`
	SuccessRate         float64                `json:"success_rate"`
	AverageRating       float64                `json:"average_rating"`
	TotalReviews        int64                  `json:"total_reviews"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

func toListingItem(m models.ModelListing) ListingItem {
	return ListingItem{
		ID:                  m.ID,
		DeveloperID:         m.DeveloperID,
		Name:                m.Name,
		Description:         m.Description,
		Category:            m.Category,
		APIName:             m.APIName,
		APIEndpoint:         m.APIEndpoint,
		APIVersion:          m.APIVersion,
		Tags:                m.Tags,
		SupportedLanguages:  m.SupportedLanguages,
		ThumbnailURL:        m.ThumbnailURL,
		DocumentationURL:    m.DocumentationURL,
		PricingType:         m.PricingType,
		PricePerRequest:     m.PricePerRequest,
		PricePerToken:       m.PricePerToken,
		MonthlyPrice:        m.MonthlySubscriptionPrice,
		RateLimitPerMinute:  m.RateLimitPerMinute,
		RateLimitPerHour:    m.RateLimitPerHour,
		RateLimitPerDay:     m.RateLimitPerDay,
		MaxTokens:           m.MaxTokens,
		Status:              m.Status,
		IsPublic:            m.IsPublic,
		TotalRequests:       m.TotalRequests,
		AverageResponseTime: m.AverageResponseTime,
		SuccessRate:         m.SuccessRate,
		AverageRating:       m.AverageRating,
		TotalReviews:        m.TotalReviews,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

type ListingListResponse struct {
	Listings []ListingItem `json:"listings"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

type CreateListingRequest struct {
	Name               string                 `json:"name" binding:"required,max=200"`
	Description        string                 `json:"description"`
	Category           models.ListingCategory `json:"category" binding:"required,oneof=nlp computer_vision speech recommendation forecasting classification generation translation sentiment other"`
	APIName            string                 `json:"api_name" binding:"required,max=100"`
	APIEndpoint        string                 `json:"api_endpoint" binding:"required,url"`
	APIVersion         string                 `json:"api_version"`
	Tags               models.StringArray     `json:"tags"`
	SupportedLanguages models.StringArray     `json:"supported_languages"`
	DocumentationURL   string                 `json:"documentation_url"`
	ExampleRequest     map[string]interface{} `json:"example_request"`
	ExampleResponse    map[string]interface{} `json:"example_response"`
	PricingType        models.PricingType     `json:"pricing_type" binding:"required,oneof=per_request per_token subscription free"`
	PricePerRequest    float64                `json:"price_per_request"`
	PricePerToken      float64                `json:"price_per_token"`
	MonthlyPrice       float64                `json:"monthly_subscription_price"`
	RateLimitPerMinute int64                  `json:"rate_limit_per_minute"`
	RateLimitPerHour   int64                  `json:"rate_limit_per_hour"`
	RateLimitPerDay    int64                  `json:"rate_limit_per_day"`
	MaxTokens          int64                  `json:"max_tokens"`
	IsPublic           *bool                  `json:"is_public"`
}

type UpdateListingRequest struct {
	Name               *string                 `json:"name"`
	Description        *string                 `json:"description"`
	Category           *models.ListingCategory `json:"category"`
	APIEndpoint        *string                 `json:"api_endpoint"`
	APIVersion         *string                 `json:"api_version"`
	Tags               *models.StringArray     `json:"tags"`
	SupportedLanguages *models.StringArray     `json:"supported_languages"`
	DocumentationURL   *string                 `json:"documentation_url"`
	ExampleRequest     map[string]interface{}  `json:"example_request"`
	ExampleResponse    map[string]interface{}  `json:"example_response"`
	PricingType        *models.PricingType     `json:"pricing_type"`
	PricePerRequest    *float64                `json:"price_per_request"`
	PricePerToken      *float64                `json:"price_per_token"`
	MonthlyPrice       *float64                `json:"monthly_subscription_price"`
	RateLimitPerMinute *int64                  `json:"rate_limit_per_minute"`
	RateLimitPerHour   *int64                  `json:"rate_limit_per_hour"`
	RateLimitPerDay    *int64                  `json:"rate_limit_per_day"`
	MaxTokens          *int64                  `json:"max_tokens"`
	IsPublic           *bool                   `json:"is_public"`
}

type UpdateStatusRequest struct {
	Status models.ListingStatus `json:"status" binding:"required,oneof=active inactive deprecated beta maintenance"`
}

type RateLimitResponse struct {
	ListingID uint   `json:"listing_id"`
	Window    string `json:"window"`
	Limited   bool   `json:"limited"`
}
