package review

import (
	"errors"
	"net/http"
	"strconv"

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

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid review ID"))
		return 0, false
	}
	return uint(id), true
}

// CreateReview godoc
// @Summary Create a review
// @Description Review a listing the caller has successfully used
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} utils.Response{data=ReviewItem}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /reviews [post]
func CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	review, err := services.CreateReview(user.ID, req.ListingID, req.Rating, req.ReviewTitle, req.ReviewText)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
		case errors.Is(err, services.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		case errors.Is(err, services.ErrReviewNotAllowed):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		case errors.Is(err, services.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create review"))
		}
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Review created successfully", toReviewItem(*review)))
}

// GetReviews godoc
// @Summary List reviews
// @Description Retrieve a paginated list of approved reviews
// @Tags reviews
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param listing_id query int false "Filter by listing"
// @Param user_id query int false "Filter by user"
// @Param min_rating query int false "Minimum rating"
// @Param verified_only query bool false "Verified reviewers only"
// @Success 200 {object} utils.Response{data=ReviewListResponse}
// @Failure 400 {object} utils.Response
// @Router /reviews [get]
func GetReviews(c *gin.Context) {
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

	filter := services.ReviewFilter{
		Page:         page,
		Limit:        limit,
		VerifiedOnly: c.Query("verified_only") == "true",
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
	if uidStr := c.Query("user_id"); uidStr != "" {
		uid, err := strconv.Atoi(uidStr)
		if err != nil || uid < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
			return
		}
		id := uint(uid)
		filter.UserID = &id
	}
	if minStr := c.Query("min_rating"); minStr != "" {
		min, err := strconv.Atoi(minStr)
		if err != nil || min < 1 || min > 5 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid min_rating"))
			return
		}
		filter.MinRating = &min
	}

	reviews, total, err := services.FindReviews(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch reviews"))
		return
	}

	items := make([]ReviewItem, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, toReviewItem(r))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", ReviewListResponse{
		Reviews: items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}))
}

// UpdateReview godoc
// @Summary Update a review
// @Description Edit the caller's own review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param request body UpdateReviewRequest true "Updated review"
// @Success 200 {object} utils.Response{data=ReviewItem}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /reviews/{id} [put]
func UpdateReview(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	review, err := services.UpdateReview(user.ID, id, req.Rating, req.ReviewTitle, req.ReviewText)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Review not found"))
		case errors.Is(err, services.ErrNotReviewOwner):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		case errors.Is(err, services.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update review"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Review updated successfully", toReviewItem(*review)))
}

// DeleteReview godoc
// @Summary Delete a review
// @Description Delete the caller's own review. Admins can delete any review.
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /reviews/{id} [delete]
func DeleteReview(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := services.DeleteReview(user.ID, user.Role == "admin", id); err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Review not found"))
		case errors.Is(err, services.ErrNotReviewOwner):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete review"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Review deleted successfully", nil))
}

// VoteOnReview godoc
// @Summary Vote on a review
// @Description Record or change a helpfulness vote on another user's review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param request body VoteRequest true "Vote"
// @Success 200 {object} utils.Response{data=ReviewItem}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /reviews/{id}/vote [post]
func VoteOnReview(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req VoteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	review, err := services.VoteOnReview(user.ID, id, req.VoteType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Review not found"))
		case errors.Is(err, services.ErrSelfVote):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		case errors.Is(err, services.ErrInvalidVoteType):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to record vote"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Vote recorded", toReviewItem(*review)))
}

// RemoveVote godoc
// @Summary Remove a vote
// @Description Withdraw the caller's helpfulness vote from a review
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} utils.Response{data=ReviewItem}
// @Failure 404 {object} utils.Response
// @Router /reviews/{id}/vote [delete]
func RemoveVote(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	review, err := services.RemoveVote(user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Review not found"))
		case errors.Is(err, services.ErrVoteNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to remove vote"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Vote removed", toReviewItem(*review)))
}

// GetReviewStats godoc
// @Summary Get review statistics for a listing
// @Description Aggregate rating distribution and verified reviewer share
// @Tags reviews
// @Produce json
// @Param listing_id path int true "Listing ID"
// @Success 200 {object} utils.Response{data=services.ReviewStats}
// @Failure 404 {object} utils.Response
// @Router /reviews/stats/{listing_id} [get]
func GetReviewStats(c *gin.Context) {
	lid, err := strconv.Atoi(c.Param("listing_id"))
	if err != nil || lid < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid listing ID"))
		return
	}

	stats, err := services.GetReviewStats(uint(lid))
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Listing not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch review stats"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", stats))
}
