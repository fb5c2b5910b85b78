package main

import (
	"log"

	"modelmarket-backend/config"
	"modelmarket-backend/internal/api"
	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"
	"modelmarket-backend/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// @title modelmarket-backend API
// @version 1.0
// @description AI model marketplace backend: catalog, usage metering, reviews and reporting.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      "info",
		Filename:   "logs/modelmarket.log",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
		Compress:   true,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(
		&models.User{},
		&models.Developer{},
		&models.ModelListing{},
		&models.UsageEvent{},
		&models.Review{},
		&models.ReviewVote{},
		&models.UsageRollup{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	initAdminUser()

	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

func initAdminUser() {
	adminUsername := "admin"
	adminEmail := "admin@modelmarket.local"
	adminPassword := "ChangeMe1234"

	var adminUser models.User
	result := database.DB.Where("username = ?", adminUsername).First(&adminUser)

	if result.Error != nil {
		if result.Error.Error() == "record not found" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}

			adminUser = models.User{
				Username: adminUsername,
				Email:    adminEmail,
				Password: string(hashedPassword),
				Role:     "admin",
				Status:   models.UserStatusActive,
			}

			if err := database.DB.Create(&adminUser).Error; err != nil {
				log.Fatalf("failed to create admin user: %v", err)
			}
			log.Println("Admin user created successfully!")
		} else {
			log.Fatalf("failed to check for admin user: %v", result.Error)
		}
	} else {
		log.Println("Admin user already exists.")
	}
}
