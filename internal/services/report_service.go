package services

import (
	"errors"
	"time"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"gorm.io/gorm"
)

var ErrInvalidRollupPeriod = errors.New("invalid rollup period")

func rollupPeriodEnd(period models.RollupPeriod, start time.Time) (time.Time, error) {
	switch period {
	case models.RollupHourly:
		return start.Add(time.Hour), nil
	case models.RollupDaily:
		return start.Add(24 * time.Hour), nil
	default:
		return time.Time{}, ErrInvalidRollupPeriod
	}
}

type rollupAgg struct {
	Total       int64
	Successful  int64
	AvgMs       float64
	MinMs       int64
	MaxMs       int64
	TotalCost   float64
	UniqueUsers int64
}

// ComputeUsageRollup aggregates the ledger for one period into a
// UsageRollup row, scoped to a listing or a developer (zero means
// unscoped for that dimension). Recomputing a period overwrites the
// previous row, so scheduler re-runs are idempotent.
func ComputeUsageRollup(period models.RollupPeriod, start time.Time, listingID, developerID uint) (*models.UsageRollup, error) {
	end, err := rollupPeriodEnd(period, start)
	if err != nil {
		return nil, err
	}

	scoped := func() *gorm.DB {
		q := database.DB.Model(&models.UsageEvent{}).
			Where("created_at >= ? AND created_at < ?", start, end)
		if listingID != 0 {
			q = q.Where("listing_id = ?", listingID)
		}
		if developerID != 0 {
			q = q.Where("developer_id = ?", developerID)
		}
		return q
	}

	var agg rollupAgg
	err = scoped().Select(
		"COUNT(*) AS total, " +
			"COALESCE(AVG(response_time_ms), 0) AS avg_ms, " +
			"COALESCE(MIN(response_time_ms), 0) AS min_ms, " +
			"COALESCE(MAX(response_time_ms), 0) AS max_ms, " +
			"COALESCE(SUM(cost_incurred), 0) AS total_cost, " +
			"COUNT(DISTINCT user_id) AS unique_users").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	err = scoped().Where("status = ?", models.UsageStatusSuccess).Count(&agg.Successful).Error
	if err != nil {
		return nil, err
	}

	rollup := &models.UsageRollup{
		PeriodType:            period,
		PeriodStart:           start,
		PeriodEnd:             end,
		ListingID:             listingID,
		DeveloperID:           developerID,
		TotalRequests:         agg.Total,
		SuccessfulRequests:    agg.Successful,
		FailedRequests:        agg.Total - agg.Successful,
		AverageResponseTimeMs: agg.AvgMs,
		MinResponseTimeMs:     agg.MinMs,
		MaxResponseTimeMs:     agg.MaxMs,
		TotalCost:             agg.TotalCost,
		UniqueUsers:           agg.UniqueUsers,
	}

	var existing models.UsageRollup
	err = database.DB.Where(
		"period_type = ? AND period_start = ? AND listing_id = ? AND developer_id = ?",
		period, start, listingID, developerID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := database.DB.Create(rollup).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		rollup.ID = existing.ID
		rollup.CreatedAt = existing.CreatedAt
		if err := database.DB.Save(rollup).Error; err != nil {
			return nil, err
		}
	}

	return rollup, nil
}

// FindRollups retrieves stored rollups for one scope, newest first.
func FindRollups(period models.RollupPeriod, listingID, developerID uint, limit int) ([]models.UsageRollup, error) {
	var rollups []models.UsageRollup
	query := database.DB.Model(&models.UsageRollup{}).
		Where("period_type = ? AND listing_id = ? AND developer_id = ?", period, listingID, developerID).
		Order("period_start desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rollups).Error; err != nil {
		return nil, err
	}
	return rollups, nil
}

// TopListingStat is one row of the top-listings dashboard.
type TopListingStat struct {
	ListingID     uint    `json:"listing_id"`
	Name          string  `json:"name"`
	RequestCount  int64   `json:"request_count"`
	AverageRating float64 `json:"average_rating"`
}

// TopListings returns the most-invoked listings over the trailing
// window, busiest first.
func TopListings(window time.Duration, limit int) ([]TopListingStat, error) {
	if limit <= 0 {
		limit = 10
	}
	since := time.Now().Add(-window)

	var stats []TopListingStat
	err := database.DB.Model(&models.UsageEvent{}).
		Select("usage_events.listing_id AS listing_id, " +
			"model_listings.name AS name, " +
			"COUNT(*) AS request_count, " +
			"model_listings.average_rating AS average_rating").
		Joins("JOIN model_listings ON model_listings.id = usage_events.listing_id").
		Where("usage_events.created_at > ?", since).
		Group("usage_events.listing_id, model_listings.name, model_listings.average_rating").
		Order("request_count DESC").
		Limit(limit).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// TimelinePoint is one day of a listing's usage timeline.
type TimelinePoint struct {
	Day               string  `json:"day"`
	Interactions      int64   `json:"interactions"`
	Successful        int64   `json:"successful"`
	SuccessRate       float64 `json:"success_rate"`
	TotalCost         float64 `json:"total_cost"`
	AverageResponseMs float64 `json:"average_response_ms"`
}

// ListingTimeline buckets the listing's trailing events per day. The
// bucketing happens in Go so the query stays portable between the
// postgres and sqlite drivers.
func ListingTimeline(listingID uint, days int) ([]TimelinePoint, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var events []models.UsageEvent
	err := database.DB.
		Select("created_at, status, cost_incurred, response_time_ms").
		Where("listing_id = ? AND created_at > ?", listingID, since).
		Order("created_at asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	type bucket struct {
		point   TimelinePoint
		totalMs int64
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, e := range events {
		day := e.CreatedAt.Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{point: TimelinePoint{Day: day}}
			buckets[day] = b
			order = append(order, day)
		}
		b.point.Interactions++
		if e.Status == models.UsageStatusSuccess {
			b.point.Successful++
		}
		b.point.TotalCost += e.CostIncurred
		b.totalMs += e.ResponseTimeMs
	}

	points := make([]TimelinePoint, 0, len(order))
	for _, day := range order {
		b := buckets[day]
		b.point.SuccessRate = float64(b.point.Successful) / float64(b.point.Interactions) * 100
		b.point.AverageResponseMs = float64(b.totalMs) / float64(b.point.Interactions)
		points = append(points, b.point)
	}

	return points, nil
}
