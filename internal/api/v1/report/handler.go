package report

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

// ComputeRollup godoc
// @Summary Compute a usage rollup
// @Description Aggregate the ledger for one period into a rollup row. Admin only, idempotent per period and scope.
// @Tags reports
// @Accept json
// @Produce json
// @Param request body ComputeRollupRequest true "Rollup period and scope"
// @Success 200 {object} utils.Response{data=RollupItem}
// @Failure 400 {object} utils.Response
// @Router /admin/reports/rollups [post]
func ComputeRollup(c *gin.Context) {
	var req ComputeRollupRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	rollup, err := services.ComputeUsageRollup(req.PeriodType, req.PeriodStart, req.ListingID, req.DeveloperID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRollupPeriod) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to compute rollup"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Rollup computed", toRollupItem(*rollup)))
}

// GetRollups godoc
// @Summary List stored rollups
// @Description Retrieve stored rollups for one scope, newest first
// @Tags reports
// @Produce json
// @Param period query string false "Period type (hourly, daily)" default(daily)
// @Param listing_id query int false "Listing scope"
// @Param developer_id query int false "Developer scope"
// @Param limit query int false "Max rows" default(30)
// @Success 200 {object} utils.Response{data=[]RollupItem}
// @Failure 400 {object} utils.Response
// @Router /reports/rollups [get]
func GetRollups(c *gin.Context) {
	period := models.RollupPeriod(c.DefaultQuery("period", "daily"))
	if period != models.RollupHourly && period != models.RollupDaily {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid period type"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit"))
		return
	}

	var listingID, developerID uint
	if lidStr := c.Query("listing_id"); lidStr != "" {
		lid, err := strconv.Atoi(lidStr)
		if err != nil || lid < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid listing ID"))
			return
		}
		listingID = uint(lid)
	}
	if didStr := c.Query("developer_id"); didStr != "" {
		did, err := strconv.Atoi(didStr)
		if err != nil || did < 1 {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid developer ID"))
			return
		}
		developerID = uint(did)
	}

	rollups, err := services.FindRollups(period, listingID, developerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch rollups"))
		return
	}

	items := make([]RollupItem, 0, len(rollups))
	for _, r := range rollups {
		items = append(items, toRollupItem(r))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", items))
}

// GetTopListings godoc
// @Summary Get the busiest listings
// @Description Rank listings by invocation count over a trailing window
// @Tags reports
// @Produce json
// @Param days query int false "Trailing window in days" default(7)
// @Param limit query int false "Max rows" default(10)
// @Success 200 {object} utils.Response{data=[]services.TopListingStat}
// @Failure 400 {object} utils.Response
// @Router /reports/top-listings [get]
func GetTopListings(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid days"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit"))
		return
	}

	stats, err := services.TopListings(time.Duration(days)*24*time.Hour, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch top listings"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", stats))
}

// GetListingTimeline godoc
// @Summary Get a listing's usage timeline
// @Description Bucket the listing's trailing events per day
// @Tags reports
// @Produce json
// @Param id path int true "Listing ID"
// @Param days query int false "Trailing window in days" default(30)
// @Success 200 {object} utils.Response{data=[]services.TimelinePoint}
// @Failure 400 {object} utils.Response
// @Router /reports/listings/{id}/timeline [get]
func GetListingTimeline(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid listing ID"))
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid days"))
		return
	}

	points, err := services.ListingTimeline(uint(id), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch timeline"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", points))
}
