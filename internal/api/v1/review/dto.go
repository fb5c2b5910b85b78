package review

import (
	"time"

	"modelmarket-backend/internal/models"
)

type CreateReviewRequest struct {
	ListingID   uint   `json:"listing_id" binding:"required"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewTitle string `json:"review_title" binding:"max=200"`
	ReviewText  string `json:"review_text"`
}

type UpdateReviewRequest struct {
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewTitle string `json:"review_title" binding:"max=200"`
	ReviewText  string `json:"review_text"`
}

type VoteRequest struct {
	VoteType models.VoteType `json:"vote_type" binding:"required,oneof=helpful not_helpful"`
}

type ReviewItem struct {
	ID               uint      `json:"id"`
	ListingID        uint      `json:"listing_id"`
	UserID           uint      `json:"user_id"`
	Rating           int       `json:"rating"`
	ReviewTitle      string    `json:"review_title"`
	ReviewText       string    `json:"review_text"`
	IsVerifiedUser   bool      `json:"is_verified_user"`
	HelpfulVotes     int64     `json:"helpful_votes"`
	TotalVotes       int64     `json:"total_votes"`
	HelpfulnessRatio float64   `json:"helpfulness_ratio"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toReviewItem(r models.Review) ReviewItem {
	return ReviewItem{
		ID:               r.ID,
		ListingID:        r.ListingID,
		UserID:           r.UserID,
		Rating:           r.Rating,
		ReviewTitle:      r.ReviewTitle,
		ReviewText:       r.ReviewText,
		IsVerifiedUser:   r.IsVerifiedUser,
		HelpfulVotes:     r.HelpfulVotes,
		TotalVotes:       r.TotalVotes,
		HelpfulnessRatio: r.HelpfulnessRatio(),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type ReviewListResponse struct {
	Reviews []ReviewItem `json:"reviews"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
}
