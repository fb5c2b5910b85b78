package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validListing() *ModelListing {
	return &ModelListing{
		PricingType:        PricingPerRequest,
		PricePerRequest:    0.01,
		RateLimitPerMinute: 60,
		RateLimitPerHour:   1000,
		RateLimitPerDay:    10000,
	}
}

func TestValidateListingPricing(t *testing.T) {
	assert.NoError(t, ValidateListingPricing(validListing()))
}

func TestValidateListingPricingModeConsistency(t *testing.T) {
	l := validListing()
	l.PricePerRequest = 0
	err := ValidateListingPricing(l)
	assert.ErrorIs(t, err, ErrInvalidPricing)

	l = validListing()
	l.PricingType = PricingPerToken
	l.PricePerToken = 0
	assert.ErrorIs(t, ValidateListingPricing(l), ErrInvalidPricing)

	l = validListing()
	l.PricingType = PricingSubscription
	l.MonthlySubscriptionPrice = 0
	assert.ErrorIs(t, ValidateListingPricing(l), ErrInvalidPricing)

	// Free listings need no price fields at all.
	l = validListing()
	l.PricingType = PricingFree
	l.PricePerRequest = 0
	assert.NoError(t, ValidateListingPricing(l))
}

func TestValidateListingPricingRateLimits(t *testing.T) {
	l := validListing()
	l.RateLimitPerHour = 0
	assert.ErrorIs(t, ValidateListingPricing(l), ErrInvalidPricing)

	l = validListing()
	l.PricingType = "pay_what_you_want"
	assert.ErrorIs(t, ValidateListingPricing(l), ErrInvalidPricing)
}
