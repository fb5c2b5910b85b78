package developer

import (
	"time"

	"modelmarket-backend/internal/models"
)

type RegisterDeveloperRequest struct {
	DeveloperName string `json:"developer_name" binding:"required,min=3,max=100"`
	CompanyName   string `json:"company_name" binding:"max=200"`
	WebsiteURL    string `json:"website_url" binding:"omitempty,url"`
	Bio           string `json:"bio"`
}

type UpdateProfileRequest struct {
	CompanyName string `json:"company_name" binding:"max=200"`
	WebsiteURL  string `json:"website_url" binding:"omitempty,url"`
	Bio         string `json:"bio"`
}

type UpdateStatusRequest struct {
	Status models.DeveloperStatus `json:"status" binding:"required,oneof=active inactive suspended pending_approval"`
}

// DeveloperResponse exposes the profile without the API key. The key is
// returned only once, from registration.
type DeveloperResponse struct {
	ID                uint                   `json:"id"`
	UserID            uint                   `json:"user_id"`
	DeveloperName     string                 `json:"developer_name"`
	CompanyName       string                 `json:"company_name"`
	WebsiteURL        string                 `json:"website_url"`
	Bio               string                 `json:"bio"`
	Status            models.DeveloperStatus `json:"status"`
	IsVerified        bool                   `json:"is_verified"`
	MonthlyQuotaLimit int64                  `json:"monthly_quota_limit"`
	CurrentMonthUsage int64                  `json:"current_month_usage"`
	TotalRevenue      float64                `json:"total_revenue"`
	CreatedAt         time.Time              `json:"created_at"`
	APIKey            string                 `json:"api_key,omitempty"`
}

func toDeveloperResponse(d models.Developer) DeveloperResponse {
	return DeveloperResponse{
		ID:                d.ID,
		UserID:            d.UserID,
		DeveloperName:     d.DeveloperName,
		CompanyName:       d.CompanyName,
		WebsiteURL:        d.WebsiteURL,
		Bio:               d.Bio,
		Status:            d.Status,
		IsVerified:        d.IsVerified,
		MonthlyQuotaLimit: d.MonthlyQuotaLimit,
		CurrentMonthUsage: d.CurrentMonthUsage,
		TotalRevenue:      d.TotalRevenue,
		CreatedAt:         d.CreatedAt,
	}
}

type RevenueResponse struct {
	DeveloperID  uint    `json:"developer_id"`
	TotalRevenue float64 `json:"total_revenue"`
}
