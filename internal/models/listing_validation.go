package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// PricingConfig is the pricing-relevant slice of a listing, validated
// as a unit so mode and price fields cannot drift apart.
type PricingConfig struct {
	PricingType              PricingType `validate:"required,oneof=per_request per_token subscription free"`
	PricePerRequest          float64     `validate:"gte=0"`
	PricePerToken            float64     `validate:"gte=0"`
	MonthlySubscriptionPrice float64     `validate:"gte=0"`
	RateLimitPerMinute       int64       `validate:"gt=0"`
	RateLimitPerHour         int64       `validate:"gt=0"`
	RateLimitPerDay          int64       `validate:"gt=0"`
}

var ErrInvalidPricing = errors.New("invalid pricing configuration")

// ValidateListingPricing checks that the listing's pricing mode is
// consistent with its price fields and that all rate-limit thresholds
// are positive.
func ValidateListingPricing(l *ModelListing) error {
	cfg := PricingConfig{
		PricingType:              l.PricingType,
		PricePerRequest:          l.PricePerRequest,
		PricePerToken:            l.PricePerToken,
		MonthlySubscriptionPrice: l.MonthlySubscriptionPrice,
		RateLimitPerMinute:       l.RateLimitPerMinute,
		RateLimitPerHour:         l.RateLimitPerHour,
		RateLimitPerDay:          l.RateLimitPerDay,
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPricing, err)
	}

	switch l.PricingType {
	case PricingPerRequest:
		if l.PricePerRequest <= 0 {
			return fmt.Errorf("%w: per_request pricing requires price_per_request > 0", ErrInvalidPricing)
		}
	case PricingPerToken:
		if l.PricePerToken <= 0 {
			return fmt.Errorf("%w: per_token pricing requires price_per_token > 0", ErrInvalidPricing)
		}
	case PricingSubscription:
		if l.MonthlySubscriptionPrice <= 0 {
			return fmt.Errorf("%w: subscription pricing requires monthly_subscription_price > 0", ErrInvalidPricing)
		}
	}

	return nil
}
