package models

import "time"

type DeveloperStatus string

const (
	DeveloperStatusActive    DeveloperStatus = "active"
	DeveloperStatusInactive  DeveloperStatus = "inactive"
	DeveloperStatusSuspended DeveloperStatus = "suspended"
	DeveloperStatusPending   DeveloperStatus = "pending_approval"
)

// Developer is the publisher profile attached to a user account. Its
// usage counter and revenue total are mutated only by the metering
// engine and the monthly reset operation.
type Developer struct {
	ID        uint `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID        uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	User          User   `json:"-"`
	DeveloperName string `gorm:"uniqueIndex;not null" json:"developer_name"`
	CompanyName   string `json:"company_name"`
	WebsiteURL    string `json:"website_url"`
	Bio           string `json:"bio"`

	Status     DeveloperStatus `gorm:"index;not null;default:'pending_approval'" json:"status"`
	IsVerified bool            `gorm:"not null;default:false" json:"is_verified"`

	APIKey            string `gorm:"uniqueIndex" json:"-"`
	MonthlyQuotaLimit int64  `gorm:"not null;default:10000" json:"monthly_quota_limit"`
	CurrentMonthUsage int64  `gorm:"not null;default:0" json:"current_month_usage"`

	TotalRevenue float64 `gorm:"not null;default:0" json:"total_revenue"`
}
