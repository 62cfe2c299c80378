package subscription

import "errors"

var (
	ErrPlanNotFound      = errors.New("subscription plan not found")
	ErrInvalidPlan       = errors.New("invalid subscription plan configuration")
	ErrFailedToLoadPlans = errors.New("failed to load subscription plans")
)
