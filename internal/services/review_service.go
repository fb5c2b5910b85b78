package services

import (
	"errors"
	"math"
	"time"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrAlreadyReviewed  = errors.New("you have already reviewed this model")
	ErrReviewNotAllowed = errors.New("you must use the model before reviewing it")
	ErrNotReviewOwner   = errors.New("review does not belong to this user")
	ErrSelfVote         = errors.New("you cannot vote on your own review")
	ErrVoteNotFound     = errors.New("you have not voted on this review")
	ErrInvalidVoteType  = errors.New("vote_type must be \"helpful\" or \"not_helpful\"")
)

// A reviewer is "verified" with at least this many prior successful
// invocations of the listing. Snapshot taken at creation only.
const verifiedReviewerThreshold = 3

// CreateReview creates a review after checking the usage precondition
// and the one-review-per-(user, listing) rule, then triggers the
// rating recompute on the listing.
func CreateReview(userID uint, listingID uint, rating int, title, text string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	listing, err := GetListingByID(listingID)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := database.DB.Model(&models.Review{}).
		Where("listing_id = ? AND user_id = ?", listingID, userID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyReviewed
	}

	var successCount int64
	if err := database.DB.Model(&models.UsageEvent{}).
		Where("user_id = ? AND listing_id = ? AND status = ?",
			userID, listingID, models.UsageStatusSuccess).
		Count(&successCount).Error; err != nil {
		return nil, err
	}
	if successCount == 0 {
		return nil, ErrReviewNotAllowed
	}

	review := &models.Review{
		ListingID:   listing.ID,
		UserID:      userID,
		Rating:      rating,
		ReviewTitle: title,
		ReviewText:  text,
		// Point-in-time snapshot; never re-evaluated.
		IsVerifiedUser: successCount >= verifiedReviewerThreshold,
		IsApproved:     true,
	}

	if err := database.DB.Create(review).Error; err != nil {
		return nil, err
	}

	if err := RecomputeListingRating(listing.ID); err != nil {
		return nil, err
	}

	return review, nil
}

// GetReviewByID retrieves a review by ID.
func GetReviewByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := database.DB.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// UpdateReview edits the owner's review content and re-runs the
// rating recompute.
func UpdateReview(userID uint, reviewID uint, rating int, title, text string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	review, err := GetReviewByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	updates := map[string]interface{}{
		"rating":       rating,
		"review_title": title,
		"review_text":  text,
	}
	if err := database.DB.Model(review).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := RecomputeListingRating(review.ListingID); err != nil {
		return nil, err
	}

	return review, nil
}

// DeleteReview removes a review (owner or admin) and recomputes the
// listing's rating over the remaining set.
func DeleteReview(userID uint, isAdmin bool, reviewID uint) error {
	review, err := GetReviewByID(reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && review.UserID != userID {
		return ErrNotReviewOwner
	}

	tx := database.DB.Begin()
	if err := tx.Where("review_id = ?", reviewID).Delete(&models.ReviewVote{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Review{}, reviewID).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	return RecomputeListingRating(review.ListingID)
}

// RecomputeListingRating recomputes average_rating and total_reviews
// from scratch over the listing's review set. Deliberately not
// incremental: a full recompute tolerates out-of-order deletes and
// edits without drift, and running it twice with no intervening
// changes yields the same result.
func RecomputeListingRating(listingID uint) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := database.DB.Model(&models.Review{}).
		Where("listing_id = ?", listingID).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Scan(&agg).Error
	if err != nil {
		return err
	}

	avg := math.Round(agg.Avg*100) / 100

	err = database.DB.Model(&models.ModelListing{}).
		Where("id = ?", listingID).
		Updates(map[string]interface{}{
			"average_rating": avg,
			"total_reviews":  agg.Count,
		}).Error
	if err != nil {
		return err
	}

	invalidateListingStats(listingID)
	return nil
}

// VoteOnReview records or changes a helpfulness vote. New votes add to
// both counters; a changed vote only moves the helpful increment, and
// repeating the same vote is a no-op. Counter adjustments and the vote
// row share one transaction.
func VoteOnReview(userID uint, reviewID uint, voteType models.VoteType) (*models.Review, error) {
	if voteType != models.VoteHelpful && voteType != models.VoteNotHelpful {
		return nil, ErrInvalidVoteType
	}

	review, err := GetReviewByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID == userID {
		return nil, ErrSelfVote
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var vote models.ReviewVote
	err = tx.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&vote).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote = models.ReviewVote{ReviewID: reviewID, UserID: userID, VoteType: voteType}
		if err := tx.Create(&vote).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		updates := map[string]interface{}{
			"total_votes": gorm.Expr("total_votes + 1"),
		}
		if voteType == models.VoteHelpful {
			updates["helpful_votes"] = gorm.Expr("helpful_votes + 1")
		}
		if err := tx.Model(&models.Review{}).Where("id = ?", reviewID).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

	case err != nil:
		tx.Rollback()
		return nil, err

	case vote.VoteType != voteType:
		if err := tx.Model(&vote).Update("vote_type", voteType).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		// Flip moves the helpful increment; total stays put.
		var expr interface{}
		if voteType == models.VoteHelpful {
			expr = gorm.Expr("helpful_votes + 1")
		} else {
			expr = gorm.Expr("helpful_votes - 1")
		}
		if err := tx.Model(&models.Review{}).Where("id = ?", reviewID).
			Update("helpful_votes", expr).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetReviewByID(reviewID)
}

// RemoveVote deletes the caller's vote and rolls the counters back.
func RemoveVote(userID uint, reviewID uint) (*models.Review, error) {
	if _, err := GetReviewByID(reviewID); err != nil {
		return nil, err
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var vote models.ReviewVote
	err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, ErrVoteNotFound
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Delete(&vote).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	updates := map[string]interface{}{
		"total_votes": gorm.Expr("total_votes - 1"),
	}
	if vote.VoteType == models.VoteHelpful {
		updates["helpful_votes"] = gorm.Expr("helpful_votes - 1")
	}
	if err := tx.Model(&models.Review{}).Where("id = ?", reviewID).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetReviewByID(reviewID)
}

// ReviewFilter defines criteria for listing reviews.
type ReviewFilter struct {
	ListingID    *uint
	UserID       *uint
	MinRating    *int
	MaxRating    *int
	VerifiedOnly bool
	Page         int
	Limit        int
}

// FindReviews retrieves a paginated list of approved reviews.
func FindReviews(filter ReviewFilter) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	query := database.DB.Model(&models.Review{}).Where("is_approved = ?", true)

	if filter.ListingID != nil {
		query = query.Where("listing_id = ?", *filter.ListingID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.MinRating != nil {
		query = query.Where("rating >= ?", *filter.MinRating)
	}
	if filter.MaxRating != nil {
		query = query.Where("rating <= ?", *filter.MaxRating)
	}
	if filter.VerifiedOnly {
		query = query.Where("is_verified_user = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// ReviewStats summarizes the review set of one listing.
type ReviewStats struct {
	TotalReviews       int64            `json:"total_reviews"`
	AverageRating      float64          `json:"average_rating"`
	RatingDistribution map[string]int64 `json:"rating_distribution"`
	VerifiedCount      int64            `json:"verified_reviews_count"`
	VerifiedPercentage float64          `json:"verified_reviews_percentage"`
	RecentReviewsCount int64            `json:"recent_reviews_count"`
}

// GetReviewStats aggregates review statistics for a listing. Recent
// means the trailing 30 days.
func GetReviewStats(listingID uint) (*ReviewStats, error) {
	if _, err := GetListingByID(listingID); err != nil {
		return nil, err
	}

	stats := &ReviewStats{
		RatingDistribution: map[string]int64{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}

	approved := func() *gorm.DB {
		return database.DB.Model(&models.Review{}).
			Where("listing_id = ? AND is_approved = ?", listingID, true)
	}

	var agg struct {
		Avg   float64
		Count int64
	}
	if err := approved().
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	stats.TotalReviews = agg.Count
	stats.AverageRating = math.Round(agg.Avg*100) / 100

	if stats.TotalReviews == 0 {
		return stats, nil
	}

	var dist []struct {
		Rating int
		Count  int64
	}
	if err := approved().
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Scan(&dist).Error; err != nil {
		return nil, err
	}
	for _, d := range dist {
		stats.RatingDistribution[ratingKey(d.Rating)] = d.Count
	}

	if err := approved().
		Where("is_verified_user = ?", true).
		Count(&stats.VerifiedCount).Error; err != nil {
		return nil, err
	}
	stats.VerifiedPercentage = math.Round(float64(stats.VerifiedCount)/float64(stats.TotalReviews)*1000) / 10

	thirtyDaysAgo := time.Now().Add(-30 * 24 * time.Hour)
	if err := approved().
		Where("created_at >= ?", thirtyDaysAgo).
		Count(&stats.RecentReviewsCount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func ratingKey(r int) string {
	switch r {
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3"
	case 4:
		return "4"
	default:
		return "5"
	}
}
