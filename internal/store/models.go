package store

import "time"

// Plan is the internal subscription plan tier.
type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
	PlanTeam Plan = "TEAM"
)

// Status is the internal subscription lifecycle status.
type Status string

const (
	StatusIncomplete Status = "INCOMPLETE"
	StatusActive     Status = "ACTIVE"
	StatusTrialing   Status = "TRIALING"
	StatusCanceled   Status = "CANCELED"
	StatusPastDue    Status = "PAST_DUE"
)

// SubscriptionRecord is the canonical local view of a user's subscription.
// There is at most one record per user and, once assigned, at most one per
// Stripe subscription ID. UpdatedAt tracks the most recently applied
// reconciliation by arrival time, not by provider event time.
type SubscriptionRecord struct {
	UserID               string    `json:"user_id"`
	Plan                 Plan      `json:"plan,omitempty"`
	PlanName             string    `json:"plan_name,omitempty"`
	Status               Status    `json:"status,omitempty"`
	StripeCustomerID     string    `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string    `json:"stripe_subscription_id,omitempty"`
	StripeProductID      string    `json:"stripe_product_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
