package services

import (
	"errors"
	"fmt"
	"strings"

	"modelmarket-backend/internal/database"
	"modelmarket-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDeveloperExists    = errors.New("user already has a developer profile")
	ErrDeveloperNameTaken = errors.New("developer name is already in use")
	ErrNoDeveloperProfile = errors.New("user has no developer profile")
)

func generateAPIKey() string {
	return fmt.Sprintf("dev_%s%s",
		strings.ReplaceAll(uuid.New().String(), "-", ""),
		strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// RegisterDeveloper creates the developer profile for a user account.
// One profile per user; the API key is generated here and returned
// only through this call path.
func RegisterDeveloper(userID uint, name, company, website, bio string) (*models.Developer, error) {
	var count int64
	if err := database.DB.Model(&models.Developer{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDeveloperExists
	}

	if err := database.DB.Model(&models.Developer{}).
		Where("developer_name = ?", name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDeveloperNameTaken
	}

	dev := &models.Developer{
		UserID:        userID,
		DeveloperName: name,
		CompanyName:   company,
		WebsiteURL:    website,
		Bio:           bio,
		Status:        models.DeveloperStatusPending,
		APIKey:        generateAPIKey(),
	}

	if err := database.DB.Create(dev).Error; err != nil {
		return nil, err
	}

	return dev, nil
}

// GetDeveloperByID retrieves a developer by ID.
func GetDeveloperByID(id uint) (*models.Developer, error) {
	var dev models.Developer
	if err := database.DB.First(&dev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeveloperNotFound
		}
		return nil, err
	}
	return &dev, nil
}

// GetDeveloperByUserID retrieves the developer profile owned by a user.
func GetDeveloperByUserID(userID uint) (*models.Developer, error) {
	var dev models.Developer
	if err := database.DB.Where("user_id = ?", userID).First(&dev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDeveloperProfile
		}
		return nil, err
	}
	return &dev, nil
}

// UpdateDeveloperProfile edits the descriptive fields of the profile.
// Quota, usage and revenue are owned by the metering engine.
func UpdateDeveloperProfile(userID uint, company, website, bio string) (*models.Developer, error) {
	dev, err := GetDeveloperByUserID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"company_name": company,
		"website_url":  website,
		"bio":          bio,
	}
	if err := database.DB.Model(dev).Updates(updates).Error; err != nil {
		return nil, err
	}

	return dev, nil
}

// UpdateDeveloperStatus sets the lifecycle status (admin operation).
func UpdateDeveloperStatus(id uint, status models.DeveloperStatus) error {
	if _, err := GetDeveloperByID(id); err != nil {
		return err
	}
	return database.DB.Model(&models.Developer{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// GetDeveloperRevenue returns the cumulative revenue total accrued by
// the metering engine for the developer.
func GetDeveloperRevenue(id uint) (float64, error) {
	dev, err := GetDeveloperByID(id)
	if err != nil {
		return 0, err
	}
	return dev.TotalRevenue, nil
}

// QuotaStatus is the read surface for a developer's monthly quota.
type QuotaStatus struct {
	MonthlyQuotaLimit int64 `json:"monthly_quota_limit"`
	CurrentMonthUsage int64 `json:"current_month_usage"`
	Remaining         int64 `json:"remaining"`
	Available         bool  `json:"available"`
}

// GetQuotaStatus reports the developer's remaining monthly quota.
func GetQuotaStatus(id uint) (*QuotaStatus, error) {
	dev, err := GetDeveloperByID(id)
	if err != nil {
		return nil, err
	}

	remaining := dev.MonthlyQuotaLimit - dev.CurrentMonthUsage
	if remaining < 0 {
		remaining = 0
	}

	return &QuotaStatus{
		MonthlyQuotaLimit: dev.MonthlyQuotaLimit,
		CurrentMonthUsage: dev.CurrentMonthUsage,
		Remaining:         remaining,
		Available:         IsQuotaAvailable(dev, 1),
	}, nil
}
