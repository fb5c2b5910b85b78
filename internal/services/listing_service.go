package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrAPINameTaken    = errors.New("api_name is already in use")
	ErrNotListingOwner = errors.New("listing does not belong to this developer")
)

const listingStatsCacheTTL = time.Minute

func listingStatsCacheKey(id uint) string {
	return fmt.Sprintf("listing:stats:%d", id)
}

// ListingFilter defines criteria for browsing the catalog.
type ListingFilter struct {
	Name        string
	Category    string
	Status      string
	DeveloperID *uint
	PublicOnly  bool
	Page        int
	Limit       int
}

// FindListings retrieves a paginated list of listings with filtering.
func FindListings(filter ListingFilter) ([]models.ModelListing, int64, error) {
	var listings []models.ModelListing
	var total int64

	query := database.DB.Model(&models.ModelListing{})

	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DeveloperID != nil {
		query = query.Where("developer_id = ?", *filter.DeveloperID)
	}
	if filter.PublicOnly {
		query = query.Where("is_public = ? AND status = ?", true, models.ListingStatusActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// GetListingByID retrieves a listing by ID.
func GetListingByID(id uint) (*models.ModelListing, error) {
	var listing models.ModelListing
	if err := database.DB.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// CreateListing publishes a new listing for the developer.
func CreateListing(developerID uint, listing *models.ModelListing) error {
	if err := models.ValidateListingPricing(listing); err != nil {
		return err
	}

	var count int64
	if err := database.DB.Model(&models.ModelListing{}).
		Where("api_name = ?", listing.APIName).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAPINameTaken
	}

	listing.DeveloperID = developerID
	// Fresh listings start from the documented bootstrap state.
	listing.TotalRequests = 0
	listing.AverageResponseTime = 0
	listing.SuccessRate = 100
	listing.AverageRating = 0
	listing.TotalReviews = 0

	return database.DB.Create(listing).Error
}

// ListingUpdate holds the developer-editable fields of a listing. Nil
// pointers leave the current value untouched.
type ListingUpdate struct {
	Name                     *string
	Description              *string
	Category                 *models.ListingCategory
	APIEndpoint              *string
	APIVersion               *string
	Tags                     *models.StringArray
	SupportedLanguages       *models.StringArray
	DocumentationURL         *string
	ExampleRequest           []byte
	ExampleResponse          []byte
	PricingType              *models.PricingType
	PricePerRequest          *float64
	PricePerToken            *float64
	MonthlySubscriptionPrice *float64
	RateLimitPerMinute       *int64
	RateLimitPerHour         *int64
	RateLimitPerDay          *int64
	MaxTokens                *int64
	IsPublic                 *bool
}

// UpdateListing applies developer-editable metadata changes. The
// rolling aggregates are never written here; only the metering engine
// and the rating recompute touch them. Pricing is validated against
// the merged result before anything is persisted.
func UpdateListing(developerID uint, isAdmin bool, id uint, in ListingUpdate) (*models.ModelListing, error) {
	listing, err := GetListingByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && listing.DeveloperID != developerID {
		return nil, ErrNotListingOwner
	}

	if in.Name != nil {
		listing.Name = *in.Name
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.Category != nil {
		listing.Category = *in.Category
	}
	if in.APIEndpoint != nil {
		listing.APIEndpoint = *in.APIEndpoint
	}
	if in.APIVersion != nil {
		listing.APIVersion = *in.APIVersion
	}
	if in.Tags != nil {
		listing.Tags = *in.Tags
	}
	if in.SupportedLanguages != nil {
		listing.SupportedLanguages = *in.SupportedLanguages
	}
	if in.DocumentationURL != nil {
		listing.DocumentationURL = *in.DocumentationURL
	}
	if in.ExampleRequest != nil {
		listing.ExampleRequest = in.ExampleRequest
	}
	if in.ExampleResponse != nil {
		listing.ExampleResponse = in.ExampleResponse
	}
	if in.PricingType != nil {
		listing.PricingType = *in.PricingType
	}
	if in.PricePerRequest != nil {
		listing.PricePerRequest = *in.PricePerRequest
	}
	if in.PricePerToken != nil {
		listing.PricePerToken = *in.PricePerToken
	}
	if in.MonthlySubscriptionPrice != nil {
		listing.MonthlySubscriptionPrice = *in.MonthlySubscriptionPrice
	}
	if in.RateLimitPerMinute != nil {
		listing.RateLimitPerMinute = *in.RateLimitPerMinute
	}
	if in.RateLimitPerHour != nil {
		listing.RateLimitPerHour = *in.RateLimitPerHour
	}
	if in.RateLimitPerDay != nil {
		listing.RateLimitPerDay = *in.RateLimitPerDay
	}
	if in.MaxTokens != nil {
		listing.MaxTokens = *in.MaxTokens
	}
	if in.IsPublic != nil {
		listing.IsPublic = *in.IsPublic
	}

	if err := models.ValidateListingPricing(listing); err != nil {
		return nil, err
	}

	if err := database.DB.Save(listing).Error; err != nil {
		return nil, err
	}

	return listing, nil
}

// UpdateListingStatus updates the status of a listing.
func UpdateListingStatus(developerID uint, isAdmin bool, id uint, status models.ListingStatus) error {
	listing, err := GetListingByID(id)
	if err != nil {
		return err
	}
	if !isAdmin && listing.DeveloperID != developerID {
		return ErrNotListingOwner
	}

	return database.DB.Model(&models.ModelListing{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SetListingThumbnail stores the uploaded asset URL on the listing.
func SetListingThumbnail(developerID uint, isAdmin bool, id uint, url string) error {
	listing, err := GetListingByID(id)
	if err != nil {
		return err
	}
	if !isAdmin && listing.DeveloperID != developerID {
		return ErrNotListingOwner
	}

	return database.DB.Model(&models.ModelListing{}).
		Where("id = ?", id).
		Update("thumbnail_url", url).Error
}

// ListingStats is the read surface for reporting collaborators.
type ListingStats struct {
	ListingID           uint    `json:"listing_id"`
	TotalRequests       int64   `json:"total_requests"`
	AverageResponseTime float64 `json:"average_response_time"`
	SuccessRate         float64 `json:"success_rate"`
	AverageRating       float64 `json:"average_rating"`
	TotalReviews        int64   `json:"total_reviews"`
}

// GetListingStats returns the listing's rolling statistics, served
// through a short-TTL Redis cache. The rating recompute invalidates
// the key; metering updates rely on the TTL.
func GetListingStats(id uint) (*ListingStats, error) {
	cacheKey := listingStatsCacheKey(id)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var stats ListingStats
			if err := json.Unmarshal([]byte(val), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	listing, err := GetListingByID(id)
	if err != nil {
		return nil, err
	}

	stats := &ListingStats{
		ListingID:           listing.ID,
		TotalRequests:       listing.TotalRequests,
		AverageResponseTime: listing.AverageResponseTime,
		SuccessRate:         listing.SuccessRate,
		AverageRating:       listing.AverageRating,
		TotalReviews:        listing.TotalReviews,
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(stats); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, listingStatsCacheTTL)
		}
	}

	return stats, nil
}

func invalidateListingStats(id uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, listingStatsCacheKey(id))
	}
}
