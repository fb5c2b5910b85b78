package models

import "time"

type VoteType string

const (
	VoteHelpful    VoteType = "helpful"
	VoteNotHelpful VoteType = "not_helpful"
)

// Review is a user's review of a listing. One review per (user,
// listing) pair. IsVerifiedUser is a snapshot taken at creation time
// and is never re-evaluated afterwards.
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ListingID uint         `gorm:"index:idx_review_listing_user,unique;not null" json:"listing_id"`
	Listing   ModelListing `json:"-"`
	UserID    uint         `gorm:"index:idx_review_listing_user,unique;not null" json:"user_id"`
	User      User         `json:"-"`

	Rating      int    `gorm:"not null" json:"rating"`
	ReviewTitle string `gorm:"not null" json:"review_title"`
	ReviewText  string `json:"review_text"`

	IsVerifiedUser bool `gorm:"not null;default:false" json:"is_verified_user"`
	IsApproved     bool `gorm:"index;not null;default:true" json:"is_approved"`

	HelpfulVotes int64 `gorm:"not null;default:0" json:"helpful_votes"`
	TotalVotes   int64 `gorm:"not null;default:0" json:"total_votes"`
}

// HelpfulnessRatio returns the helpful share of votes as a percentage.
func (r *Review) HelpfulnessRatio() float64 {
	if r.TotalVotes == 0 {
		return 0
	}
	return float64(r.HelpfulVotes) / float64(r.TotalVotes) * 100
}

// ReviewVote records one user's helpfulness vote on a review. One vote
// per (user, review) pair; changing the vote flips the review's
// counters instead of creating a second row.
type ReviewVote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReviewID uint     `gorm:"index:idx_vote_review_user,unique;not null" json:"review_id"`
	Review   Review   `json:"-"`
	UserID   uint     `gorm:"index:idx_vote_review_user,unique;not null" json:"user_id"`
	VoteType VoteType `gorm:"not null" json:"vote_type"`
}
