package listing

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"modelmarket-backend/internal/models"
	"modelmarket-backend/internal/services"
	"modelmarket-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "User not authenticated"))
		return models.User{}, false
	}
	return userVal.(models.User), true
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid listing ID"))
		return 0, false
	}
	return uint(id), true
}

// GetListings godoc
// @Summary Browse the model catalog
// @Description Retrieve a paginated list of model listings with filtering based on user role
// @Tags listings
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param name query string false "Filter by name"
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Param developer_id query int false "Filter by developer"
// @Success 200 {object} utils.Response{data=ListingListResponse}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /listings [get]
func GetListings(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter := services.ListingFilter{
		Page:     page,
		Limit:    limit,
		Name:     c.Query("name"),
		Category: c.Query("category"),
	}

	if devIDStr := c.Query("developer_id"); devIDStr != "" {
		devID, err := strconv.Atoi(devIDStr)
		if err != nil || devID < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid developer ID"))
			return
		}
		id := uint(devID)
		filter.DeveloperID = &id
	}

	// Admins can browse any status; everyone else sees the public
	// active catalog, plus their own listings through developer_id.
	if user.Role == "admin" {
		filter.Status = c.Query("status")
	} else if filter.DeveloperID != nil {
		dev, err := services.GetDeveloperByUserID(user.ID)
		if err != nil || dev.ID != *filter.DeveloperID {
			filter.PublicOnly = true
		} else {
			filter.Status = c.Query("status")
		}
	} else {
		filter.PublicOnly = true
	}

	listings, total, err := services.FindListings(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch listings"))
		return
	}

	items := make([]ListingItem, 0, len(listings))
	for _, m := range listings {
		items = append(items, toListingItem(m))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", ListingListResponse{
		Listings: items,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}))
}

// GetListing godoc
// @Summary Get a single listing
// @Description Retrieve one listing by ID
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} utils.Response{data=ListingItem}
// @Failure 404 {object} utils.Response
// @Router /listings/{id} [get]
func GetListing(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	listing, err := services.GetListingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		return
	}

	if !listing.IsPublic && user.Role != "admin" {
		dev, err := services.GetDeveloperByUserID(user.ID)
		if err != nil || dev.ID != listing.DeveloperID {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
			return
		}
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", toListingItem(*listing)))
}

// GetListingStats godoc
// @Summary Get listing statistics
// @Description Retrieve the rolling usage and rating statistics of a listing
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} utils.Response{data=services.ListingStats}
// @Failure 404 {object} utils.Response
// @Router /listings/{id}/stats [get]
func GetListingStats(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	stats, err := services.GetListingStats(id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch stats"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", stats))
}

// CheckRateLimit godoc
// @Summary Check the caller's rate limit
// @Description Report whether the caller has reached the listing's threshold for the given window
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Param window query string false "Window (minute, hour, day)" default(minute)
// @Success 200 {object} utils.Response{data=RateLimitResponse}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /listings/{id}/rate-limit [get]
func CheckRateLimit(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	listing, err := services.GetListingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		return
	}

	window := services.RateLimitWindow(c.DefaultQuery("window", "minute"))
	limited, err := services.CheckRateLimit(user.ID, listing, window)
	if err != nil {
		if errors.Is(err, services.ErrUnknownWindow) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check rate limit"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", RateLimitResponse{
		ListingID: id,
		Window:    string(window),
		Limited:   limited,
	}))
}

// CreateListing godoc
// @Summary Publish a new listing
// @Description Create a new model listing for the caller's developer profile
// @Tags listings
// @Accept json
// @Produce json
// @Param request body CreateListingRequest true "Listing details"
// @Success 201 {object} utils.Response{data=ListingItem}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /listings [post]
func CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	dev, err := services.GetDeveloperByUserID(user.ID)
	if err != nil {
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "A developer profile is required to publish listings"))
		return
	}

	listing := models.ModelListing{
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		APIName:            req.APIName,
		APIEndpoint:        req.APIEndpoint,
		Tags:               req.Tags,
		SupportedLanguages: req.SupportedLanguages,
		DocumentationURL:   req.DocumentationURL,
		PricingType:        req.PricingType,
		PricePerRequest:    req.PricePerRequest,
		PricePerToken:      req.PricePerToken,
		MaxTokens:          req.MaxTokens,

		MonthlySubscriptionPrice: req.MonthlyPrice,

		RateLimitPerMinute: 60,
		RateLimitPerHour:   1000,
		RateLimitPerDay:    10000,
		APIVersion:         "v1",
		Status:             models.ListingStatusActive,
		IsPublic:           true,
	}
	if req.APIVersion != "" {
		listing.APIVersion = req.APIVersion
	}
	if req.RateLimitPerMinute > 0 {
		listing.RateLimitPerMinute = req.RateLimitPerMinute
	}
	if req.RateLimitPerHour > 0 {
		listing.RateLimitPerHour = req.RateLimitPerHour
	}
	if req.RateLimitPerDay > 0 {
		listing.RateLimitPerDay = req.RateLimitPerDay
	}
	if req.IsPublic != nil {
		listing.IsPublic = *req.IsPublic
	}
	if req.ExampleRequest != nil {
		if data, err := json.Marshal(req.ExampleRequest); err == nil {
			listing.ExampleRequest = data
		}
	}
	if req.ExampleResponse != nil {
		if data, err := json.Marshal(req.ExampleResponse); err == nil {
			listing.ExampleResponse = data
		}
	}

	if err := services.CreateListing(dev.ID, &listing); err != nil {
		switch {
		case errors.Is(err, services.ErrAPINameTaken):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		case errors.Is(err, models.ErrInvalidPricing):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create listing"))
		}
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Listing created successfully", toListingItem(listing)))
}

// UpdateListing godoc
// @Summary Update listing metadata
// @Description Update the developer-editable fields of a listing
// @Tags listings
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body UpdateListingRequest true "Fields to update"
// @Success 200 {object} utils.Response{data=ListingItem}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /listings/{id} [put]
func UpdateListing(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	var devID uint
	isAdmin := user.Role == "admin"
	if !isAdmin {
		dev, err := services.GetDeveloperByUserID(user.ID)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "A developer profile is required"))
			return
		}
		devID = dev.ID
	}

	update := services.ListingUpdate{
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		APIEndpoint:        req.APIEndpoint,
		APIVersion:         req.APIVersion,
		Tags:               req.Tags,
		SupportedLanguages: req.SupportedLanguages,
		DocumentationURL:   req.DocumentationURL,
		PricingType:        req.PricingType,
		PricePerRequest:    req.PricePerRequest,
		PricePerToken:      req.PricePerToken,
		MaxTokens:          req.MaxTokens,
		IsPublic:           req.IsPublic,

		MonthlySubscriptionPrice: req.MonthlyPrice,

		RateLimitPerMinute: req.RateLimitPerMinute,
		RateLimitPerHour:   req.RateLimitPerHour,
		RateLimitPerDay:    req.RateLimitPerDay,
	}
	if req.ExampleRequest != nil {
		if data, err := json.Marshal(req.ExampleRequest); err == nil {
			update.ExampleRequest = data
		}
	}
	if req.ExampleResponse != nil {
		if data, err := json.Marshal(req.ExampleResponse); err == nil {
			update.ExampleResponse = data
		}
	}

	listing, err := services.UpdateListing(devID, isAdmin, id, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		case errors.Is(err, services.ErrNotListingOwner):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		case errors.Is(err, models.ErrInvalidPricing):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update listing"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Listing updated successfully", toListingItem(*listing)))
}

// UpdateListingStatus godoc
// @Summary Update listing status
// @Description Change the lifecycle status of a listing
// @Tags listings
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /listings/{id}/status [patch]
func UpdateListingStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	var devID uint
	isAdmin := user.Role == "admin"
	if !isAdmin {
		dev, err := services.GetDeveloperByUserID(user.ID)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "A developer profile is required"))
			return
		}
		devID = dev.ID
	}

	if err := services.UpdateListingStatus(devID, isAdmin, id, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		case errors.Is(err, services.ErrNotListingOwner):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update status"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Status updated successfully", nil))
}

// UploadThumbnail godoc
// @Summary Upload a listing thumbnail
// @Description Upload a thumbnail image for the listing to OSS
// @Tags listings
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Listing ID"
// @Param file formData file true "Thumbnail image"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /listings/{id}/thumbnail [post]
func UploadThumbnail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	var devID uint
	isAdmin := user.Role == "admin"
	if !isAdmin {
		dev, err := services.GetDeveloperByUserID(user.ID)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "A developer profile is required"))
			return
		}
		devID = dev.ID
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Missing thumbnail file"))
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to store uploaded file"))
		return
	}
	defer os.Remove(tmpPath)

	uploader := services.NewSTSClientManager()
	url, err := uploader.UploadFile(tmpPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to upload thumbnail"))
		return
	}

	if err := services.SetListingThumbnail(devID, isAdmin, id, url); err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		case errors.Is(err, services.ErrNotListingOwner):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to save thumbnail"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Thumbnail uploaded successfully", gin.H{"thumbnail_url": url}))
}
