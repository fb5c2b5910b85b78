package services

import (
	"errors"
	"time"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("usage event not found")
	ErrNotEventOwner     = errors.New("usage event does not belong to this user")
	ErrInvalidUsageState = errors.New("invalid usage event status")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)

// RecordUsageInput carries everything the invocation-handling
// collaborator knows about one logical invocation.
type RecordUsageInput struct {
	UserID         *uint
	ListingID      uint
	SessionID      string
	Prompt         string
	RequestParams  models.JSON
	Response       string
	Status         models.UsageStatus
	ResponseTimeMs int64
	InputTokens    int64
	OutputTokens   int64
	IPAddress      string
	UserAgent      string
	APIVersion     string
}

func validUsageStatus(s models.UsageStatus) bool {
	switch s {
	case models.UsageStatusSuccess, models.UsageStatusError, models.UsageStatusTimeout,
		models.UsageStatusRateLimited, models.UsageStatusInsufficientQuota:
		return true
	}
	return false
}

// RecordUsageEvent appends one row to the usage ledger and then runs
// the metering cascade exactly once. Cost is computed and frozen here;
// it is never recomputed afterwards.
func RecordUsageEvent(in RecordUsageInput) (*models.UsageEvent, error) {
	if in.Status == "" {
		in.Status = models.UsageStatusSuccess
	}
	if !validUsageStatus(in.Status) {
		return nil, ErrInvalidUsageState
	}

	listing, err := GetListingByID(in.ListingID)
	if err != nil {
		return nil, err
	}

	apiVersion := in.APIVersion
	if apiVersion == "" {
		apiVersion = listing.APIVersion
	}

	event := &models.UsageEvent{
		UserID:         in.UserID,
		ListingID:      listing.ID,
		DeveloperID:    listing.DeveloperID,
		SessionID:      in.SessionID,
		RequestID:      uuid.New().String(),
		Prompt:         in.Prompt,
		RequestParams:  in.RequestParams,
		Response:       in.Response,
		Status:         in.Status,
		ResponseTimeMs: in.ResponseTimeMs,
		InputTokens:    in.InputTokens,
		OutputTokens:   in.OutputTokens,
		CostIncurred:   CalculateEventCost(listing, in.InputTokens, in.OutputTokens),
		IPAddress:      in.IPAddress,
		UserAgent:      in.UserAgent,
		APIVersion:     apiVersion,
	}

	if err := database.DB.Create(event).Error; err != nil {
		return nil, err
	}

	if err := ApplyUsageMetrics(listing, event); err != nil {
		// The ledger row exists and stays authoritative; aggregate
		// failures surface to the caller without compensation.
		return nil, err
	}

	return event, nil
}

// UsageFilter defines criteria for filtering ledger queries.
type UsageFilter struct {
	UserID    *uint
	ListingID *uint
	SessionID string
	Status    *models.UsageStatus
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// FindUsageEvents retrieves a paginated slice of the ledger.
func FindUsageEvents(filter UsageFilter) ([]models.UsageEvent, int64, error) {
	var events []models.UsageEvent
	var total int64

	query := database.DB.Model(&models.UsageEvent{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ListingID != nil {
		query = query.Where("listing_id = ?", *filter.ListingID)
	}
	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// UpdateEventFeedback attaches post-hoc user feedback to an event the
// user owns. These are the only two mutable fields on a ledger row.
func UpdateEventFeedback(userID uint, eventID uint, rating *int, feedback string) (*models.UsageEvent, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, ErrInvalidRating
	}

	var event models.UsageEvent
	if err := database.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if event.UserID == nil || *event.UserID != userID {
		return nil, ErrNotEventOwner
	}

	updates := map[string]interface{}{
		"user_feedback": feedback,
	}
	if rating != nil {
		updates["user_rating"] = *rating
	}

	if err := database.DB.Model(&event).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &event, nil
}

// UserUsageStats summarizes one user's interaction history.
type UserUsageStats struct {
	TotalInteractions int64   `json:"total_interactions"`
	UniqueListings    int64   `json:"unique_listings"`
	UniqueSessions    int64   `json:"unique_sessions"`
	SuccessRate       float64 `json:"success_rate"`
	TotalCost         float64 `json:"total_cost"`
	TotalTokens       int64   `json:"total_tokens"`
	AverageResponseMs float64 `json:"average_response_ms"`
	MostUsedListing   string  `json:"most_used_listing"`
}

// GetUserUsageStats aggregates the user's slice of the ledger.
func GetUserUsageStats(userID uint) (*UserUsageStats, error) {
	stats := &UserUsageStats{}

	row := database.DB.Model(&models.UsageEvent{}).
		Where("user_id = ?", userID).
		Select("COUNT(*) AS total_interactions, " +
			"COUNT(DISTINCT listing_id) AS unique_listings, " +
			"COUNT(DISTINCT session_id) AS unique_sessions, " +
			"COALESCE(SUM(cost_incurred), 0) AS total_cost, " +
			"COALESCE(SUM(input_tokens + output_tokens), 0) AS total_tokens, " +
			"COALESCE(AVG(response_time_ms), 0) AS average_response_ms")
	if err := row.Scan(stats).Error; err != nil {
		return nil, err
	}

	if stats.TotalInteractions > 0 {
		var successful int64
		err := database.DB.Model(&models.UsageEvent{}).
			Where("user_id = ? AND status = ?", userID, models.UsageStatusSuccess).
			Count(&successful).Error
		if err != nil {
			return nil, err
		}
		stats.SuccessRate = float64(successful) / float64(stats.TotalInteractions) * 100

		var top struct {
			Name string
		}
		err = database.DB.Model(&models.UsageEvent{}).
			Select("model_listings.name AS name").
			Joins("JOIN model_listings ON model_listings.id = usage_events.listing_id").
			Where("usage_events.user_id = ?", userID).
			Group("model_listings.name").
			Order("COUNT(*) DESC").
			Limit(1).
			Scan(&top).Error
		if err != nil {
			return nil, err
		}
		stats.MostUsedListing = top.Name
	}

	return stats, nil
}
