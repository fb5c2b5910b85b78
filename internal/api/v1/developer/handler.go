package developer

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

// RegisterDeveloper godoc
// @Summary Register a developer profile
// @Description Create the developer profile for the calling user. The API key is returned only here.
// @Tags developers
// @Accept json
// @Produce json
// @Param request body RegisterDeveloperRequest true "Profile details"
// @Success 201 {object} utils.Response{data=DeveloperResponse}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /developers [post]
func RegisterDeveloper(c *gin.Context) {
	var req RegisterDeveloperRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	dev, err := services.RegisterDeveloper(user.ID, req.DeveloperName, req.CompanyName, req.WebsiteURL, req.Bio)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDeveloperExists), errors.Is(err, services.ErrDeveloperNameTaken):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to register developer"))
		}
		return
	}

	resp := toDeveloperResponse(*dev)
	resp.APIKey = dev.APIKey

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Developer registered successfully", resp))
}

// GetMyProfile godoc
// @Summary Get own developer profile
// @Description Retrieve the calling user's developer profile
// @Tags developers
// @Produce json
// @Success 200 {object} utils.Response{data=DeveloperResponse}
// @Failure 404 {object} utils.Response
// @Router /developers/me [get]
func GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	dev, err := services.GetDeveloperByUserID(user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNoDeveloperProfile) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch profile"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", toDeveloperResponse(*dev)))
}

// UpdateMyProfile godoc
// @Summary Update own developer profile
// @Description Edit the descriptive fields of the calling user's developer profile
// @Tags developers
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} utils.Response{data=DeveloperResponse}
// @Failure 404 {object} utils.Response
// @Router /developers/me [put]
func UpdateMyProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	dev, err := services.UpdateDeveloperProfile(user.ID, req.CompanyName, req.WebsiteURL, req.Bio)
	if err != nil {
		if errors.Is(err, services.ErrNoDeveloperProfile) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update profile"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Profile updated successfully", toDeveloperResponse(*dev)))
}

// GetMyRevenue godoc
// @Summary Get own cumulative revenue
// @Description Retrieve the revenue accrued by the metering engine for the caller's listings
// @Tags developers
// @Produce json
// @Success 200 {object} utils.Response{data=RevenueResponse}
// @Failure 404 {object} utils.Response
// @Router /developers/me/revenue [get]
func GetMyRevenue(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	dev, err := services.GetDeveloperByUserID(user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNoDeveloperProfile) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch revenue"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", RevenueResponse{
		DeveloperID:  dev.ID,
		TotalRevenue: dev.TotalRevenue,
	}))
}

// GetMyQuota godoc
// @Summary Get own quota status
// @Description Report the caller's remaining monthly quota
// @Tags developers
// @Produce json
// @Success 200 {object} utils.Response{data=services.QuotaStatus}
// @Failure 404 {object} utils.Response
// @Router /developers/me/quota [get]
func GetMyQuota(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	dev, err := services.GetDeveloperByUserID(user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNoDeveloperProfile) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch quota"))
		return
	}

	quota, err := services.GetQuotaStatus(dev.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch quota"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", quota))
}

// UpdateDeveloperStatus godoc
// @Summary Update a developer's status
// @Description Set the lifecycle status of a developer. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Developer ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /admin/developers/{id}/status [patch]
func UpdateDeveloperStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid developer ID"))
		return
	}

	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := services.UpdateDeveloperStatus(uint(id), req.Status); err != nil {
		if errors.Is(err, services.ErrDeveloperNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update status"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Status updated successfully", nil))
}

// ResetMonthlyUsage godoc
// @Summary Reset a developer's monthly usage
// @Description Zero the developer's current-month usage counter. Admin only, idempotent.
// @Tags admin
// @Produce json
// @Param id path int true "Developer ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /admin/developers/{id}/reset-usage [post]
func ResetMonthlyUsage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid developer ID"))
		return
	}

	if err := services.ResetMonthlyUsage(uint(id)); err != nil {
		if errors.Is(err, services.ErrDeveloperNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to reset usage"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Monthly usage reset", nil))
}
