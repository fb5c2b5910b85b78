package usage

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"modelmarket-backend/internal/models"
	"modelmarket-backend/internal/services"
	"modelmarket-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "User not authenticated"))
		return models.User{}, false
	}
	return userVal.(models.User), true
}

// RecordUsage godoc
// @Summary Record a usage event
// @Description Append one invocation to the usage ledger and run the metering cascade
// @Tags usage
// @Accept json
// @Produce json
// @Param request body RecordUsageRequest true "Usage event"
// @Success 201 {object} utils.Response{data=UsageEventItem}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /usage [post]
func RecordUsage(c *gin.Context) {
	var req RecordUsageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	// Regular callers always record for themselves. Only admins, acting
	// for ingestion collaborators, may attribute an event to another
	// user or record it anonymously.
	userID := &user.ID
	if req.Anonymous || (req.UserID != nil && *req.UserID != user.ID) {
		if user.Role != "admin" {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Only admin can record events for other users"))
			return
		}
		if req.Anonymous {
			userID = nil
		} else {
			userID = req.UserID
		}
	}

	event, err := services.RecordUsageEvent(services.RecordUsageInput{
		UserID:         userID,
		ListingID:      req.ListingID,
		SessionID:      req.SessionID,
		Prompt:         req.Prompt,
		RequestParams:  req.RequestParams,
		Response:       req.Response,
		Status:         models.UsageStatus(req.Status),
		ResponseTimeMs: req.ResponseTimeMs,
		InputTokens:    req.InputTokens,
		OutputTokens:   req.OutputTokens,
		IPAddress:      c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
		APIVersion:     req.APIVersion,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		case errors.Is(err, services.ErrInvalidUsageState):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to record usage event"))
		}
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Usage event recorded", toUsageEventItem(*event)))
}

// GetUsageEvents godoc
// @Summary List usage events
// @Description Retrieve a paginated slice of the caller's usage ledger. Admins can query any user.
// @Tags usage
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param listing_id query int false "Filter by listing"
// @Param session_id query string false "Filter by session"
// @Param status query string false "Filter by status"
// @Param user_id query int false "Filter by user (admin only)"
// @Success 200 {object} utils.Response{data=UsageListResponse}
// @Failure 400 {object} utils.Response
// @Router /usage [get]
func GetUsageEvents(c *gin.Context) {
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

	filter := services.UsageFilter{
		Page:      page,
		Limit:     limit,
		SessionID: c.Query("session_id"),
	}

	if user.Role == "admin" && c.Query("user_id") != "" {
		uid, err := strconv.Atoi(c.Query("user_id"))
		if err != nil || uid < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
			return
		}
		id := uint(uid)
		filter.UserID = &id
	} else {
		filter.UserID = &user.ID
	}

	if lidStr := c.Query("listing_id"); lidStr != "" {
		lid, err := strconv.Atoi(lidStr)
		if err != nil || lid < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid listing ID"))
			return
		}
		id := uint(lid)
		filter.ListingID = &id
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.UsageStatus(statusStr)
		filter.Status = &status
	}

	if startStr := c.Query("start_time"); startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid start_time"))
			return
		}
		filter.StartTime = &start
	}
	if endStr := c.Query("end_time"); endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid end_time"))
			return
		}
		filter.EndTime = &end
	}

	events, total, err := services.FindUsageEvents(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch usage events"))
		return
	}

	items := make([]UsageEventItem, 0, len(events))
	for _, e := range events {
		items = append(items, toUsageEventItem(e))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", UsageListResponse{
		Events: items,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}))
}

// GetUsageStats godoc
// @Summary Get the caller's usage statistics
// @Description Aggregate the caller's slice of the usage ledger
// @Tags usage
// @Produce json
// @Success 200 {object} utils.Response{data=services.UserUsageStats}
// @Router /usage/stats [get]
func GetUsageStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := services.GetUserUsageStats(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch usage stats"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", stats))
}

// UpdateFeedback godoc
// @Summary Attach feedback to a usage event
// @Description Set the rating and feedback text on an event owned by the caller
// @Tags usage
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body FeedbackRequest true "Feedback"
// @Success 200 {object} utils.Response{data=UsageEventItem}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /usage/{id}/feedback [patch]
func UpdateFeedback(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid event ID"))
		return
	}

	var req FeedbackRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	event, err := services.UpdateEventFeedback(user.ID, uint(id), req.Rating, req.Feedback)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Usage event not found"))
		case errors.Is(err, services.ErrNotEventOwner):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		case errors.Is(err, services.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update feedback"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Feedback saved", toUsageEventItem(*event)))
}
