package services

import (
	"testing"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func seedSuccessfulUsage(t *testing.T, userID uint, listingID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		recordEvent(t, &userID, listingID, models.UsageStatusSuccess, 100)
	}
}

func TestCreateReviewRequiresSuccessfulUsage(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_pre")
	listing := createTestListing(dev, "rv_pre")
	user := createTestUser("rv_pre")

	_, err := CreateReview(user.ID, listing.ID, 5, "great", "never used it though")
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	// A failed invocation does not qualify either.
	recordEvent(t, &user.ID, listing.ID, models.UsageStatusError, 100)
	_, err = CreateReview(user.ID, listing.ID, 5, "great", "still never succeeded")
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	recordEvent(t, &user.ID, listing.ID, models.UsageStatusSuccess, 100)
	review, err := CreateReview(user.ID, listing.ID, 5, "great", "works now")
	assert.NoError(t, err)
	assert.True(t, review.IsApproved)
}

func TestCreateReviewOncePerUserAndListing(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_dup")
	listing := createTestListing(dev, "rv_dup")
	user := createTestUser("rv_dup")
	seedSuccessfulUsage(t, user.ID, listing.ID, 1)

	_, err := CreateReview(user.ID, listing.ID, 4, "good", "")
	assert.NoError(t, err)

	_, err = CreateReview(user.ID, listing.ID, 2, "changed my mind", "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestCreateReviewRatingBounds(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_bounds")
	listing := createTestListing(dev, "rv_bounds")
	user := createTestUser("rv_bounds")
	seedSuccessfulUsage(t, user.ID, listing.ID, 1)

	_, err := CreateReview(user.ID, listing.ID, 0, "", "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = CreateReview(user.ID, listing.ID, 6, "", "")
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestVerifiedReviewerSnapshot(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_ver")
	listing := createTestListing(dev, "rv_ver")
	casual := createTestUser("rv_casual")
	heavy := createTestUser("rv_heavy")

	seedSuccessfulUsage(t, casual.ID, listing.ID, 2)
	casualReview, err := CreateReview(casual.ID, listing.ID, 4, "ok", "")
	assert.NoError(t, err)
	assert.False(t, casualReview.IsVerifiedUser)

	seedSuccessfulUsage(t, heavy.ID, listing.ID, 3)
	heavyReview, err := CreateReview(heavy.ID, listing.ID, 5, "solid", "")
	assert.NoError(t, err)
	assert.True(t, heavyReview.IsVerifiedUser)

	// Later usage does not retroactively upgrade the snapshot.
	seedSuccessfulUsage(t, casual.ID, listing.ID, 10)
	reloaded, err := GetReviewByID(casualReview.ID)
	assert.NoError(t, err)
	assert.False(t, reloaded.IsVerifiedUser)
}

func TestRatingRecomputeAndRounding(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_avg")
	listing := createTestListing(dev, "rv_avg")

	ratings := []int{5, 4, 4}
	for i, r := range ratings {
		user := createTestUser("rv_avg_" + string(rune('a'+i)))
		seedSuccessfulUsage(t, user.ID, listing.ID, 1)
		_, err := CreateReview(user.ID, listing.ID, r, "", "")
		assert.NoError(t, err)
	}

	var updated models.ModelListing
	database.DB.First(&updated, listing.ID)
	// 13/3 rounded to two decimals
	assert.Equal(t, 4.33, updated.AverageRating)
	assert.Equal(t, int64(3), updated.TotalReviews)

	// Re-running with no changes is a no-op.
	assert.NoError(t, RecomputeListingRating(listing.ID))
	database.DB.First(&updated, listing.ID)
	assert.Equal(t, 4.33, updated.AverageRating)
	assert.Equal(t, int64(3), updated.TotalReviews)
}

func TestUpdateReviewOwnershipAndRecompute(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_upd")
	listing := createTestListing(dev, "rv_upd")
	owner := createTestUser("rv_upd_owner")
	other := createTestUser("rv_upd_other")
	seedSuccessfulUsage(t, owner.ID, listing.ID, 1)

	review, err := CreateReview(owner.ID, listing.ID, 2, "meh", "")
	assert.NoError(t, err)

	_, err = UpdateReview(other.ID, review.ID, 5, "hijack", "")
	assert.ErrorIs(t, err, ErrNotReviewOwner)

	_, err = UpdateReview(owner.ID, review.ID, 5, "improved a lot", "")
	assert.NoError(t, err)

	var updated models.ModelListing
	database.DB.First(&updated, listing.ID)
	assert.Equal(t, 5.0, updated.AverageRating)
}

func TestDeleteReviewRecomputesOverRemaining(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_del")
	listing := createTestListing(dev, "rv_del")
	alice := createTestUser("rv_del_alice")
	bob := createTestUser("rv_del_bob")
	seedSuccessfulUsage(t, alice.ID, listing.ID, 1)
	seedSuccessfulUsage(t, bob.ID, listing.ID, 1)

	aliceReview, err := CreateReview(alice.ID, listing.ID, 1, "bad", "")
	assert.NoError(t, err)
	_, err = CreateReview(bob.ID, listing.ID, 5, "good", "")
	assert.NoError(t, err)

	assert.NoError(t, DeleteReview(alice.ID, false, aliceReview.ID))

	var updated models.ModelListing
	database.DB.First(&updated, listing.ID)
	assert.Equal(t, 5.0, updated.AverageRating)
	assert.Equal(t, int64(1), updated.TotalReviews)

	// Votes on the deleted review are gone too.
	var voteCount int64
	database.DB.Model(&models.ReviewVote{}).Where("review_id = ?", aliceReview.ID).Count(&voteCount)
	assert.Equal(t, int64(0), voteCount)
}

func TestVoteProtocol(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("vote")
	listing := createTestListing(dev, "vote")
	author := createTestUser("vote_author")
	voter := createTestUser("vote_voter")
	seedSuccessfulUsage(t, author.ID, listing.ID, 1)

	review, err := CreateReview(author.ID, listing.ID, 4, "", "")
	assert.NoError(t, err)

	// Self-vote rejected.
	_, err = VoteOnReview(author.ID, review.ID, models.VoteHelpful)
	assert.ErrorIs(t, err, ErrSelfVote)

	// New helpful vote bumps both counters.
	updated, err := VoteOnReview(voter.ID, review.ID, models.VoteHelpful)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), updated.HelpfulVotes)
	assert.Equal(t, int64(1), updated.TotalVotes)

	// Repeating the same vote is a no-op.
	updated, err = VoteOnReview(voter.ID, review.ID, models.VoteHelpful)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), updated.HelpfulVotes)
	assert.Equal(t, int64(1), updated.TotalVotes)

	// Flipping moves the helpful increment but leaves the total alone.
	updated, err = VoteOnReview(voter.ID, review.ID, models.VoteNotHelpful)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), updated.HelpfulVotes)
	assert.Equal(t, int64(1), updated.TotalVotes)

	// Removing rolls the counters back.
	updated, err = RemoveVote(voter.ID, review.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), updated.HelpfulVotes)
	assert.Equal(t, int64(0), updated.TotalVotes)

	_, err = RemoveVote(voter.ID, review.ID)
	assert.ErrorIs(t, err, ErrVoteNotFound)
}

func TestVoteRejectsUnknownType(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("vote_bad")
	listing := createTestListing(dev, "vote_bad")
	author := createTestUser("vote_bad_author")
	voter := createTestUser("vote_bad_voter")
	seedSuccessfulUsage(t, author.ID, listing.ID, 1)

	review, err := CreateReview(author.ID, listing.ID, 3, "", "")
	assert.NoError(t, err)

	_, err = VoteOnReview(voter.ID, review.ID, models.VoteType("love_it"))
	assert.ErrorIs(t, err, ErrInvalidVoteType)
}

func TestGetReviewStats(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_stats")
	listing := createTestListing(dev, "rv_stats")

	ratings := []int{5, 5, 4, 2}
	for i, r := range ratings {
		user := createTestUser("rv_stats_" + string(rune('a'+i)))
		// The first reviewer qualifies as verified.
		n := 1
		if i == 0 {
			n = verifiedReviewerThreshold
		}
		seedSuccessfulUsage(t, user.ID, listing.ID, n)
		_, err := CreateReview(user.ID, listing.ID, r, "", "")
		assert.NoError(t, err)
	}

	stats, err := GetReviewStats(listing.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalReviews)
	assert.Equal(t, 4.0, stats.AverageRating)
	assert.Equal(t, int64(2), stats.RatingDistribution["5"])
	assert.Equal(t, int64(1), stats.RatingDistribution["4"])
	assert.Equal(t, int64(1), stats.RatingDistribution["2"])
	assert.Equal(t, int64(0), stats.RatingDistribution["1"])
	assert.Equal(t, int64(1), stats.VerifiedCount)
	assert.InDelta(t, 25.0, stats.VerifiedPercentage, 0.01)
	assert.Equal(t, int64(4), stats.RecentReviewsCount)
}

func TestGetReviewStatsEmptyListing(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("rv_empty")
	listing := createTestListing(dev, "rv_empty")

	stats, err := GetReviewStats(listing.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalReviews)
	assert.Equal(t, 0.0, stats.AverageRating)

	_, err = GetReviewStats(99999)
	assert.ErrorIs(t, err, ErrListingNotFound)
}
