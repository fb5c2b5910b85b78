package review

import (
	"modelmarket-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	reviewGroup := router.Group("/reviews")
	reviewGroup.Use(middleware.AuthMiddleware())
	{
		reviewGroup.POST("", CreateReview)
		reviewGroup.GET("", GetReviews)
		reviewGroup.PUT("/:id", UpdateReview)
		reviewGroup.DELETE("/:id", DeleteReview)
		reviewGroup.POST("/:id/vote", VoteOnReview)
		reviewGroup.DELETE("/:id/vote", RemoveVote)
		reviewGroup.GET("/stats/:listing_id", GetReviewStats)
	}
}
