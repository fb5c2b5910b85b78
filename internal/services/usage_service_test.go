package services

import (
	"testing"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRecordUsageEventCascade(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("cascade")
	listing := createTestListing(dev, "cascade")
	user := createTestUser("cascade")

	event, err := RecordUsageEvent(RecordUsageInput{
		UserID:         &user.ID,
		ListingID:      listing.ID,
		SessionID:      "sess-1",
		Prompt:         "translate this",
		Status:         models.UsageStatusSuccess,
		ResponseTimeMs: 230,
		InputTokens:    120,
		OutputTokens:   80,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, event.RequestID)
	assert.Equal(t, listing.DeveloperID, event.DeveloperID)
	assert.Equal(t, 0.01, event.CostIncurred)
	assert.Equal(t, int64(200), event.TotalTokens())

	var updated models.ModelListing
	database.DB.First(&updated, listing.ID)
	assert.Equal(t, int64(1), updated.TotalRequests)
	assert.InDelta(t, 230.0, updated.AverageResponseTime, 1e-9)
	assert.InDelta(t, 100.0, updated.SuccessRate, 1e-9)

	var updatedDev models.Developer
	database.DB.First(&updatedDev, dev.ID)
	assert.Equal(t, int64(1), updatedDev.CurrentMonthUsage)
	assert.InDelta(t, 0.01, updatedDev.TotalRevenue, 1e-9)
}

func TestRecordUsageEventDefaultsToSuccess(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("default")
	listing := createTestListing(dev, "default")
	user := createTestUser("default")

	event, err := RecordUsageEvent(RecordUsageInput{
		UserID:    &user.ID,
		ListingID: listing.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.UsageStatusSuccess, event.Status)
	assert.True(t, event.IsSuccessful())
}

func TestRecordUsageEventAnonymous(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("anon")
	listing := createTestListing(dev, "anon")

	event, err := RecordUsageEvent(RecordUsageInput{
		UserID:    nil,
		ListingID: listing.ID,
		Status:    models.UsageStatusSuccess,
	})
	assert.NoError(t, err)
	assert.Nil(t, event.UserID)

	// Anonymous traffic still drives the listing counters.
	var updated models.ModelListing
	database.DB.First(&updated, listing.ID)
	assert.Equal(t, int64(1), updated.TotalRequests)
}

func TestRecordUsageEventRejectsUnknownStatus(t *testing.T) {
	setupTestDB()

	dev := createTestDeveloper("badstatus")
	listing := createTestListing(dev, "badstatus")
	user := createTestUser("badstatus")

	_, err := RecordUsageEvent(RecordUsageInput{
		UserID:    &user.ID,
		ListingID: listing.ID,
		Status:    models.UsageStatus("exploded"),
	})
	assert.ErrorIs(t, err, ErrInvalidUsageState)
}

func TestRecordUsageEventUnknownListing(t *testing.T) {
	setupTestDB()

	user := createTestUser("nolisting")
	_, err := RecordUsageEvent(RecordUsageInput{
		UserID:    &user.ID,
		ListingID: 99999,
	})
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestRecordUsageEventInheritsListingAPIVersion(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("apiver")
	listing := createTestListing(dev, "apiver")
	database.DB.Model(listing).Update("api_version", "v3")
	user := createTestUser("apiver")

	event, err := RecordUsageEvent(RecordUsageInput{
		UserID:    &user.ID,
		ListingID: listing.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, "v3", event.APIVersion)
}

func TestFindUsageEventsFilters(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("filter")
	listing := createTestListing(dev, "filter")
	alice := createTestUser("filter_alice")
	bob := createTestUser("filter_bob")

	recordEvent(t, &alice.ID, listing.ID, models.UsageStatusSuccess, 100)
	recordEvent(t, &alice.ID, listing.ID, models.UsageStatusError, 100)
	recordEvent(t, &bob.ID, listing.ID, models.UsageStatusSuccess, 100)

	events, total, err := FindUsageEvents(UsageFilter{UserID: &alice.ID, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)

	status := models.UsageStatusError
	events, total, err = FindUsageEvents(UsageFilter{UserID: &alice.ID, Status: &status, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.UsageStatusError, events[0].Status)
}

func TestUpdateEventFeedback(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("fb")
	listing := createTestListing(dev, "fb")
	owner := createTestUser("fb_owner")
	other := createTestUser("fb_other")

	event := recordEvent(t, &owner.ID, listing.ID, models.UsageStatusSuccess, 100)

	rating := 4
	updated, err := UpdateEventFeedback(owner.ID, event.ID, &rating, "quite good")
	assert.NoError(t, err)
	assert.Equal(t, 4, *updated.UserRating)
	assert.Equal(t, "quite good", updated.UserFeedback)

	_, err = UpdateEventFeedback(other.ID, event.ID, &rating, "not mine")
	assert.ErrorIs(t, err, ErrNotEventOwner)

	bad := 6
	_, err = UpdateEventFeedback(owner.ID, event.ID, &bad, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = UpdateEventFeedback(owner.ID, 99999, &rating, "")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetUserUsageStats(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	dev := createTestDeveloper("stats")
	listingA := createTestListing(dev, "stats_a")
	listingB := createTestListing(dev, "stats_b")
	user := createTestUser("stats")

	recordEvent(t, &user.ID, listingA.ID, models.UsageStatusSuccess, 100)
	recordEvent(t, &user.ID, listingA.ID, models.UsageStatusSuccess, 200)
	recordEvent(t, &user.ID, listingB.ID, models.UsageStatusError, 300)

	stats, err := GetUserUsageStats(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalInteractions)
	assert.Equal(t, int64(2), stats.UniqueListings)
	assert.InDelta(t, 100.0*2/3, stats.SuccessRate, 0.0001)
	assert.InDelta(t, 200.0, stats.AverageResponseMs, 1e-9)
	assert.Equal(t, listingA.Name, stats.MostUsedListing)
	assert.Equal(t, int64(450), stats.TotalTokens)
}

func TestGetUserUsageStatsEmpty(t *testing.T) {
	setupTestDB()

	user := createTestUser("empty")
	stats, err := GetUserUsageStats(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalInteractions)
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.Empty(t, stats.MostUsedListing)
}
