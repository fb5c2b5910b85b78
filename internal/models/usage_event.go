package models

import "time"

type UsageStatus string

const (
	UsageStatusSuccess           UsageStatus = "success"
	UsageStatusError             UsageStatus = "error"
	UsageStatusTimeout           UsageStatus = "timeout"
	UsageStatusRateLimited       UsageStatus = "rate_limited"
	UsageStatusInsufficientQuota UsageStatus = "insufficient_quota"
)

// UsageEvent is one row of the usage ledger: a single recorded
// invocation of a listing. Rows are immutable once written except for
// UserRating and UserFeedback, which the caller may attach afterwards.
// The ledger is the source of truth; every aggregate on ModelListing
// and Developer can be regenerated from it.
type UsageEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Nullable: anonymous invocations carry no user.
	UserID    *uint        `gorm:"index" json:"user_id"`
	ListingID uint         `gorm:"index;not null" json:"listing_id"`
	Listing   ModelListing `json:"-"`
	// Denormalized from the listing at creation so developer-scoped
	// reporting does not need a join.
	DeveloperID uint `gorm:"index;not null" json:"developer_id"`

	SessionID string `gorm:"index" json:"session_id"`
	RequestID string `gorm:"uniqueIndex;not null" json:"request_id"`

	Prompt        string `json:"prompt"`
	RequestParams JSON   `json:"request_params"`
	Response      string `json:"response"`

	Status         UsageStatus `gorm:"index;not null;default:'success'" json:"status"`
	ResponseTimeMs int64       `gorm:"not null" json:"response_time_ms"`

	InputTokens  int64 `gorm:"not null;default:0" json:"input_tokens"`
	OutputTokens int64 `gorm:"not null;default:0" json:"output_tokens"`

	// Set once at creation by the metering engine, never recomputed.
	CostIncurred float64 `gorm:"not null;default:0" json:"cost_incurred"`

	// Post-hoc feedback on the interaction itself (distinct from
	// model reviews).
	UserRating   *int   `json:"user_rating"`
	UserFeedback string `json:"user_feedback"`

	IPAddress  string `gorm:"index" json:"ip_address"`
	UserAgent  string `json:"user_agent"`
	APIVersion string `gorm:"not null;default:'v1'" json:"api_version"`
}

// TotalTokens returns input + output tokens for the event.
func (e *UsageEvent) TotalTokens() int64 {
	return e.InputTokens + e.OutputTokens
}

// IsSuccessful reports whether the invocation completed successfully.
func (e *UsageEvent) IsSuccessful() bool {
	return e.Status == UsageStatusSuccess
}
