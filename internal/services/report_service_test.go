package services

import (
	"testing"
	"time"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeUsageRollupIdempotent(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("ru")
	listing := createTestListing(dev, "ru")
	alice := createTestUser("ru_alice")
	bob := createTestUser("ru_bob")

	recordEvent(t, &alice.ID, listing.ID, models.UsageStatusSuccess, 100)
	recordEvent(t, &alice.ID, listing.ID, models.UsageStatusError, 300)
	recordEvent(t, &bob.ID, listing.ID, models.UsageStatusSuccess, 200)

	start := time.Now().Truncate(time.Hour)
	rollup, err := ComputeUsageRollup(models.RollupHourly, start, listing.ID, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), rollup.TotalRequests)
	assert.Equal(t, int64(2), rollup.SuccessfulRequests)
	assert.Equal(t, int64(1), rollup.FailedRequests)
	assert.Equal(t, int64(100), rollup.MinResponseTimeMs)
	assert.Equal(t, int64(300), rollup.MaxResponseTimeMs)
	assert.InDelta(t, 200.0, rollup.AverageResponseTimeMs, 1e-9)
	assert.InDelta(t, 0.02, rollup.TotalCost, 1e-9)
	assert.Equal(t, int64(2), rollup.UniqueUsers)
	assert.InDelta(t, 100.0*2/3, rollup.SuccessRate(), 0.0001)

	// Recomputing the same period overwrites rather than duplicating.
	again, err := ComputeUsageRollup(models.RollupHourly, start, listing.ID, 0)
	assert.NoError(t, err)
	assert.Equal(t, rollup.ID, again.ID)

	var count int64
	database.DB.Model(&models.UsageRollup{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestComputeUsageRollupEmptyPeriod(t *testing.T) {
	setupTestDB()

	start := time.Now().AddDate(-1, 0, 0).Truncate(24 * time.Hour)
	rollup, err := ComputeUsageRollup(models.RollupDaily, start, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), rollup.TotalRequests)
	assert.Equal(t, 0.0, rollup.AverageResponseTimeMs)
	assert.Equal(t, 0.0, rollup.SuccessRate())
}

func TestComputeUsageRollupInvalidPeriod(t *testing.T) {
	setupTestDB()

	_, err := ComputeUsageRollup(models.RollupPeriod("weekly"), time.Now(), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidRollupPeriod)
}

func TestComputeUsageRollupDeveloperScope(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	devA := createTestDeveloper("ru_a")
	devB := createTestDeveloper("ru_b")
	listingA := createTestListing(devA, "ru_a")
	listingB := createTestListing(devB, "ru_b")
	user := createTestUser("ru_scope")

	recordEvent(t, &user.ID, listingA.ID, models.UsageStatusSuccess, 100)
	recordEvent(t, &user.ID, listingB.ID, models.UsageStatusSuccess, 100)

	start := time.Now().Truncate(24 * time.Hour)
	rollup, err := ComputeUsageRollup(models.RollupDaily, start, 0, devA.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rollup.TotalRequests)
}

func TestFindRollups(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("ru_find")
	listing := createTestListing(dev, "ru_find")
	user := createTestUser("ru_find")
	recordEvent(t, &user.ID, listing.ID, models.UsageStatusSuccess, 100)

	today := time.Now().Truncate(24 * time.Hour)
	_, err := ComputeUsageRollup(models.RollupDaily, today, listing.ID, 0)
	assert.NoError(t, err)
	_, err = ComputeUsageRollup(models.RollupDaily, today.AddDate(0, 0, -1), listing.ID, 0)
	assert.NoError(t, err)

	rollups, err := FindRollups(models.RollupDaily, listing.ID, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, rollups, 2)
	// Newest first.
	assert.True(t, rollups[0].PeriodStart.After(rollups[1].PeriodStart))
}

func TestTopListings(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("top")
	busy := createTestListing(dev, "top_busy")
	quiet := createTestListing(dev, "top_quiet")
	user := createTestUser("top")

	for i := 0; i < 3; i++ {
		recordEvent(t, &user.ID, busy.ID, models.UsageStatusSuccess, 100)
	}
	recordEvent(t, &user.ID, quiet.ID, models.UsageStatusSuccess, 100)

	stats, err := TopListings(7*24*time.Hour, 10)
	assert.NoError(t, err)
	assert.Len(t, stats, 2)
	assert.Equal(t, busy.ID, stats[0].ListingID)
	assert.Equal(t, int64(3), stats[0].RequestCount)
	assert.Equal(t, quiet.ID, stats[1].ListingID)
}

func TestListingTimeline(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("tl")
	listing := createTestListing(dev, "tl")
	user := createTestUser("tl")

	recordEvent(t, &user.ID, listing.ID, models.UsageStatusSuccess, 100)
	recordEvent(t, &user.ID, listing.ID, models.UsageStatusError, 300)

	// Push one event to yesterday.
	old := recordEvent(t, &user.ID, listing.ID, models.UsageStatusSuccess, 200)
	database.DB.Model(&models.UsageEvent{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -1))

	points, err := ListingTimeline(listing.ID, 7)
	assert.NoError(t, err)
	assert.Len(t, points, 2)

	yesterday := points[0]
	assert.Equal(t, int64(1), yesterday.Interactions)
	assert.InDelta(t, 100.0, yesterday.SuccessRate, 1e-9)

	today := points[1]
	assert.Equal(t, int64(2), today.Interactions)
	assert.Equal(t, int64(1), today.Successful)
	assert.InDelta(t, 50.0, today.SuccessRate, 1e-9)
	assert.InDelta(t, 200.0, today.AverageResponseMs, 1e-9)
	assert.InDelta(t, 0.02, today.TotalCost, 1e-9)
}

func TestListingTimelineEmpty(t *testing.T) {
	setupTestDB()

	points, err := ListingTimeline(99999, 7)
	assert.NoError(t, err)
	assert.Empty(t, points)
}
