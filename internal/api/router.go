package api

import (
	"modelmarket-backend/config"
	_ "modelmarket-backend/docs"
	"modelmarket-backend/internal/api/v1/auth"
	"modelmarket-backend/internal/api/v1/common/upload"
	"modelmarket-backend/internal/api/v1/developer"
	"modelmarket-backend/internal/api/v1/listing"
	"modelmarket-backend/internal/api/v1/report"
	"modelmarket-backend/internal/api/v1/review"
	"modelmarket-backend/internal/api/v1/usage"
	userRoutes "modelmarket-backend/internal/api/v1/user"
	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)
		listing.RegisterRoutes(v1)
		usage.RegisterRoutes(v1)
		review.RegisterRoutes(v1)
		developer.RegisterRoutes(v1)
		report.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			userRoutes.RegisterRoutes(authorized)
			upload.RegisterRoutes(authorized)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			developer.RegisterAdminRoutes(admin)
			report.RegisterAdminRoutes(admin)
		}
	}

	return router, nil
}
