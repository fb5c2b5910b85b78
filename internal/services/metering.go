package services

import (
	"errors"
	"math"
	"time"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"
	"modelmarket-backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RateLimitWindow selects which of a listing's thresholds a rate-limit
// check runs against.
type RateLimitWindow string

const (
	RateWindowMinute RateLimitWindow = "minute"
	RateWindowHour   RateLimitWindow = "hour"
	RateWindowDay    RateLimitWindow = "day"
)

var (
	ErrUnknownWindow     = errors.New("unknown rate limit window")
	ErrDeveloperNotFound = errors.New("developer not found")
)

// CalculateEventCost computes the cost of a single invocation from the
// listing's pricing mode. Subscription-mode listings settle through the
// external billing collaborator, so per-event cost is zero there, same
// as free listings.
func CalculateEventCost(listing *models.ModelListing, inputTokens, outputTokens int64) float64 {
	switch listing.PricingType {
	case models.PricingPerRequest:
		return roundCost(listing.PricePerRequest)
	case models.PricingPerToken:
		return roundCost(listing.PricePerToken * float64(inputTokens+outputTokens))
	default:
		return 0
	}
}

// Costs are stored with 6 decimal places.
func roundCost(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// ApplyUsageMetrics applies the metering cascade for one freshly
// persisted usage event: listing request counter, rolling average
// response time, rolling success rate, then the developer's monthly
// usage counter and, on the success path, revenue accrual. It must be
// called exactly once per ledger write, after the write.
//
// Each entity is updated with a single compound UPDATE whose
// expressions all read the pre-update column values, so concurrent
// writers cannot lose increments. The rolling formulas need no
// bootstrap branch: with a prior count of zero the average collapses
// to the new sample and the rate to 100 or 0.
//
// A failure here is not compensated. The ledger row already exists and
// is authoritative; the aggregates can be regenerated from it.
func ApplyUsageMetrics(listing *models.ModelListing, event *models.UsageEvent) error {
	updates := map[string]interface{}{
		"total_requests": gorm.Expr("total_requests + 1"),
		"average_response_time": gorm.Expr(
			"(average_response_time * total_requests + ?) / (total_requests + 1)",
			float64(event.ResponseTimeMs),
		),
	}
	if event.IsSuccessful() {
		updates["success_rate"] = gorm.Expr(
			"(success_rate * total_requests + 100.0) / (total_requests + 1)")
	} else {
		updates["success_rate"] = gorm.Expr(
			"(success_rate * total_requests) / (total_requests + 1)")
	}

	result := database.DB.Model(&models.ModelListing{}).
		Where("id = ?", event.ListingID).
		Updates(updates)
	if result.Error != nil {
		logger.Log.Error("listing metrics update failed",
			zap.Uint("listing_id", event.ListingID),
			zap.Error(result.Error))
		return result.Error
	}

	devUpdates := map[string]interface{}{
		"current_month_usage": gorm.Expr("current_month_usage + 1"),
	}
	if event.IsSuccessful() && event.CostIncurred > 0 {
		devUpdates["total_revenue"] = gorm.Expr("total_revenue + ?", event.CostIncurred)
	}

	result = database.DB.Model(&models.Developer{}).
		Where("id = ?", listing.DeveloperID).
		Updates(devUpdates)
	if result.Error != nil {
		logger.Log.Error("developer metrics update failed",
			zap.Uint("developer_id", listing.DeveloperID),
			zap.Error(result.Error))
		return result.Error
	}

	return nil
}

// CheckRateLimit reports whether the subject has already reached the
// listing's threshold for the given trailing window. It is a pure
// query over the ledger; recording the event is the caller's decision.
// An unrecognized window is an error rather than the permissive
// fall-through: the window value comes from code, not user input, and
// silently disabling rate limiting on a typo is worse than failing.
func CheckRateLimit(userID uint, listing *models.ModelListing, window RateLimitWindow) (bool, error) {
	var since time.Time
	var limit int64
	now := time.Now()

	switch window {
	case RateWindowMinute:
		since = now.Add(-time.Minute)
		limit = listing.RateLimitPerMinute
	case RateWindowHour:
		since = now.Add(-time.Hour)
		limit = listing.RateLimitPerHour
	case RateWindowDay:
		since = now.Add(-24 * time.Hour)
		limit = listing.RateLimitPerDay
	default:
		return false, ErrUnknownWindow
	}

	var count int64
	err := database.DB.Model(&models.UsageEvent{}).
		Where("user_id = ? AND listing_id = ? AND created_at > ?", userID, listing.ID, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count >= limit, nil
}

// IsQuotaAvailable reports whether the developer can absorb another
// `requested` calls within the current month's quota.
func IsQuotaAvailable(dev *models.Developer, requested int64) bool {
	return dev.CurrentMonthUsage+requested <= dev.MonthlyQuotaLimit
}

// ResetMonthlyUsage zeroes a developer's current-month usage counter.
// Idempotent; invoked by the external scheduler on calendar boundaries.
func ResetMonthlyUsage(developerID uint) error {
	var dev models.Developer
	if err := database.DB.First(&dev, developerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeveloperNotFound
		}
		return err
	}

	return database.DB.Model(&models.Developer{}).
		Where("id = ?", developerID).
		Update("current_month_usage", 0).Error
}
