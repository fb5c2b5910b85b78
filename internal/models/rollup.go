package models

import "time"

type RollupPeriod string

const (
	RollupHourly RollupPeriod = "hourly"
	RollupDaily  RollupPeriod = "daily"
)

// UsageRollup is a derived aggregate over the usage ledger for one
// period and one scope (a listing or a developer). Rollups are
// recomputed by upserting on the unique key, so re-running a period is
// idempotent.
type UsageRollup struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PeriodType  RollupPeriod `gorm:"index:idx_rollup_key,unique;not null" json:"period_type"`
	PeriodStart time.Time    `gorm:"index:idx_rollup_key,unique;not null" json:"period_start"`
	PeriodEnd   time.Time    `gorm:"not null" json:"period_end"`

	// Exactly one of ListingID/DeveloperID is set; zero means
	// "not scoped to this dimension".
	ListingID   uint `gorm:"index:idx_rollup_key,unique;not null;default:0" json:"listing_id"`
	DeveloperID uint `gorm:"index:idx_rollup_key,unique;not null;default:0" json:"developer_id"`

	TotalRequests      int64 `gorm:"not null;default:0" json:"total_requests"`
	SuccessfulRequests int64 `gorm:"not null;default:0" json:"successful_requests"`
	FailedRequests     int64 `gorm:"not null;default:0" json:"failed_requests"`

	AverageResponseTimeMs float64 `gorm:"not null;default:0" json:"average_response_time_ms"`
	MinResponseTimeMs     int64   `gorm:"not null;default:0" json:"min_response_time_ms"`
	MaxResponseTimeMs     int64   `gorm:"not null;default:0" json:"max_response_time_ms"`

	TotalCost   float64 `gorm:"not null;default:0" json:"total_cost"`
	UniqueUsers int64   `gorm:"not null;default:0" json:"unique_users"`
}

// SuccessRate returns the successful share of requests as a percentage.
func (r *UsageRollup) SuccessRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.SuccessfulRequests) / float64(r.TotalRequests) * 100
}
