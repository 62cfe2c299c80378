package subscription

// Status represents the current billing state of a tenant's subscription.
type Status string

const (
	StatusTrialing  Status = "trialing"
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// BlocksAccess reports whether this subscription state disqualifies the
// tenant from serving traffic. Trialing and active tenants pass; every
// delinquent state blocks. Unknown states block as well so a migration
// adding a new state fails closed.
func (s Status) BlocksAccess() bool {
	switch s {
	case StatusTrialing, StatusActive:
		return false
	default:
		return true
	}
}

// BillingInterval represents the billing frequency of a plan.
type BillingInterval string

const (
	BillingIntervalNone    BillingInterval = "none" // free plans
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// Money is a monetary amount in the smallest currency unit,
// e.g. $19.00 USD is Amount 1900, Currency "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}
