package listing

import (
	"modelmarket-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	listingGroup := router.Group("/listings")
	listingGroup.Use(middleware.AuthMiddleware())
	{
		listingGroup.GET("", GetListings)
		listingGroup.POST("", CreateListing)
		listingGroup.GET("/:id", GetListing)
		listingGroup.PUT("/:id", UpdateListing)
		listingGroup.PATCH("/:id/status", UpdateListingStatus)
		listingGroup.GET("/:id/stats", GetListingStats)
		listingGroup.GET("/:id/rate-limit", CheckRateLimit)
		listingGroup.POST("/:id/thumbnail", UploadThumbnail)
	}
}
