package listing_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"modelmarket-backend/internal/api/v1/listing"
	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.Developer{}, &models.ModelListing{}, &models.UsageEvent{})
	err = db.AutoMigrate(&models.User{}, &models.Developer{}, &models.ModelListing{}, &models.UsageEvent{})
	if err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
}

func seedListing(devID uint, apiName string, isPublic bool, status models.ListingStatus) models.ModelListing {
	l := models.ModelListing{
		DeveloperID:     devID,
		Name:            "Listing " + apiName,
		Category:        models.CategoryNLP,
		APIName:         apiName,
		APIEndpoint:     "https://models.example.com/" + apiName,
		APIVersion:      "v1",
		PricingType:     models.PricingFree,
		Status:          status,
		IsPublic:        isPublic,
		SuccessRate:     100,
	}
	database.DB.Create(&l)
	return l
}

func TestGetListings(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	adminUser := models.User{Username: "admin", Email: "admin@example.com", Role: "admin", Status: models.UserStatusActive}
	normalUser := models.User{Username: "user", Email: "user@example.com", Role: "user", Status: models.UserStatusActive}
	database.DB.Create(&adminUser)
	database.DB.Create(&normalUser)

	devOwner := models.User{Username: "owner", Email: "owner@example.com", Role: "user", Status: models.UserStatusActive}
	database.DB.Create(&devOwner)
	dev := models.Developer{UserID: devOwner.ID, DeveloperName: "owner-dev", Status: models.DeveloperStatusActive, APIKey: "dev_test", MonthlyQuotaLimit: 10000}
	database.DB.Create(&dev)

	seedListing(dev.ID, "public_active", true, models.ListingStatusActive)
	seedListing(dev.ID, "private_active", false, models.ListingStatusActive)
	seedListing(dev.ID, "public_inactive", true, models.ListingStatusInactive)

	tests := []struct {
		name           string
		user           models.User
		queryParams    string
		expectedStatus int
		expectedTotal  int64
	}{
		{
			name:           "Admin sees all listings",
			user:           adminUser,
			expectedStatus: http.StatusOK,
			expectedTotal:  3,
		},
		{
			name:           "User sees only public active listings",
			user:           normalUser,
			expectedStatus: http.StatusOK,
			expectedTotal:  1,
		},
		{
			name:           "Owner browsing own catalog sees everything",
			user:           devOwner,
			queryParams:    "&developer_id=1",
			expectedStatus: http.StatusOK,
			expectedTotal:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req, _ := http.NewRequest("GET", "/listings?page=1&limit=10"+tt.queryParams, nil)
			c.Request = req
			c.Set("user", tt.user)

			listing.GetListings(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp struct {
				Status int                         `json:"status"`
				Data   listing.ListingListResponse `json:"data"`
			}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedTotal, resp.Data.Total)
		})
	}
}

func TestGetListingHidesPrivateFromStrangers(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	normalUser := models.User{Username: "stranger", Email: "stranger@example.com", Role: "user", Status: models.UserStatusActive}
	database.DB.Create(&normalUser)

	devOwner := models.User{Username: "owner2", Email: "owner2@example.com", Role: "user", Status: models.UserStatusActive}
	database.DB.Create(&devOwner)
	dev := models.Developer{UserID: devOwner.ID, DeveloperName: "owner2-dev", Status: models.DeveloperStatusActive, APIKey: "dev_test2", MonthlyQuotaLimit: 10000}
	database.DB.Create(&dev)

	private := seedListing(dev.ID, "hidden", false, models.ListingStatusActive)

	listingID := strconv.Itoa(int(private.ID))
	get := func(user models.User) int {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req, _ := http.NewRequest("GET", "/listings/"+listingID, nil)
		c.Request = req
		c.Params = gin.Params{{Key: "id", Value: listingID}}
		c.Set("user", user)
		listing.GetListing(c)
		return w.Code
	}

	assert.Equal(t, http.StatusNotFound, get(normalUser))
	assert.Equal(t, http.StatusOK, get(devOwner))
}

func TestCreateListingRequiresDeveloperProfile(t *testing.T) {
	setupTestDB()
	gin.SetMode(gin.TestMode)

	normalUser := models.User{Username: "nodev", Email: "nodev@example.com", Role: "user", Status: models.UserStatusActive}
	database.DB.Create(&normalUser)

	body := `{"name":"M","category":"nlp","api_name":"m1","api_endpoint":"https://models.example.com/m1","pricing_type":"free"}`

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/listings", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user", normalUser)

	listing.CreateListing(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
