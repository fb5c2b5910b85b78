package usage

import (
	"time"

	"modelmarket-backend/internal/models"
)

type RecordUsageRequest struct {
	ListingID      uint        `json:"listing_id" binding:"required"`
	UserID         *uint       `json:"user_id"`
	Anonymous      bool        `json:"anonymous"`
	SessionID      string      `json:"session_id"`
	Prompt         string      `json:"prompt"`
	RequestParams  models.JSON `json:"request_params"`
	Response       string      `json:"response"`
	Status         string      `json:"status"`
	ResponseTimeMs int64       `json:"response_time_ms"`
	InputTokens    int64       `json:"input_tokens"`
	OutputTokens   int64       `json:"output_tokens"`
	APIVersion     string      `json:"api_version"`
}

type UsageEventItem struct {
	ID             uint               `json:"id"`
	UserID         *uint              `json:"user_id"`
	ListingID      uint               `json:"listing_id"`
	SessionID      string             `json:"session_id"`
	RequestID      string             `json:"request_id"`
	Status         models.UsageStatus `json:"status"`
	ResponseTimeMs int64              `json:"response_time_ms"`
	InputTokens    int64              `json:"input_tokens"`
	OutputTokens   int64              `json:"output_tokens"`
	TotalTokens    int64              `json:"total_tokens"`
	CostIncurred   float64            `json:"cost_incurred"`
	UserRating     *int               `json:"user_rating,omitempty"`
	UserFeedback   string             `json:"user_feedback,omitempty"`
	APIVersion     string             `json:"api_version"`
	CreatedAt      time.Time          `json:"created_at"`
}

func toUsageEventItem(e models.UsageEvent) UsageEventItem {
	return UsageEventItem{
		ID:             e.ID,
		UserID:         e.UserID,
		ListingID:      e.ListingID,
		SessionID:      e.SessionID,
		RequestID:      e.RequestID,
		Status:         e.Status,
		ResponseTimeMs: e.ResponseTimeMs,
		InputTokens:    e.InputTokens,
		OutputTokens:   e.OutputTokens,
		TotalTokens:    e.TotalTokens(),
		CostIncurred:   e.CostIncurred,
		UserRating:     e.UserRating,
		UserFeedback:   e.UserFeedback,
		APIVersion:     e.APIVersion,
		CreatedAt:      e.CreatedAt,
	}
}

type UsageListResponse struct {
	Events []UsageEventItem `json:"events"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Limit  int              `json:"limit"`
}

type FeedbackRequest struct {
	Rating   *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Feedback string `json:"feedback"`
}
