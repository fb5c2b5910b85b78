package report

import (
	"time"

	"modelmarket-backend/internal/models"
)

type ComputeRollupRequest struct {
	PeriodType  models.RollupPeriod `json:"period_type" binding:"required,oneof=hourly daily"`
	PeriodStart time.Time           `json:"period_start" binding:"required"`
	ListingID   uint                `json:"listing_id"`
	DeveloperID uint                `json:"developer_id"`
}

type RollupItem struct {
	ID                    uint                `json:"id"`
	PeriodType            models.RollupPeriod `json:"period_type"`
	PeriodStart           time.Time           `json:"period_start"`
	PeriodEnd             time.Time           `json:"period_end"`
	ListingID             uint                `json:"listing_id"`
	DeveloperID           uint                `json:"developer_id"`
	TotalRequests         int64               `json:"total_requests"`
	SuccessfulRequests    int64               `json:"successful_requests"`
	FailedRequests        int64               `json:"failed_requests"`
	SuccessRate           float64             `json:"success_rate"`
	AverageResponseTimeMs float64             `json:"average_response_time_ms"`
	MinResponseTimeMs     int64               `json:"min_response_time_ms"`
	MaxResponseTimeMs     int64               `json:"max_response_time_ms"`
	TotalCost             float64             `json:"total_cost"`
	UniqueUsers           int64               `json:"unique_users"`
}

func toRollupItem(r models.UsageRollup) RollupItem {
	return RollupItem{
		ID:                    r.ID,
		PeriodType:            r.PeriodType,
		PeriodStart:           r.PeriodStart,
		PeriodEnd:             r.PeriodEnd,
		ListingID:             r.ListingID,
		DeveloperID:           r.DeveloperID,
		TotalRequests:         r.TotalRequests,
		SuccessfulRequests:    r.SuccessfulRequests,
		FailedRequests:        r.FailedRequests,
		SuccessRate:           r.SuccessRate(),
		AverageResponseTimeMs: r.AverageResponseTimeMs,
		MinResponseTimeMs:     r.MinResponseTimeMs,
		MaxResponseTimeMs:     r.MaxResponseTimeMs,
		TotalCost:             r.TotalCost,
		UniqueUsers:           r.UniqueUsers,
	}
}
