package billing

import (
	"strings"

	"github.com/launchkit/launchkit/internal/store"
)

// defaultPlanName is used when a subscription event arrives without the
// nested product expansion.
const defaultPlanName = "Pro Plan"

// MapSubscriptionStatus converts a Stripe subscription status string to the
// internal Status. Unknown statuses fail closed (incomplete).
func MapSubscriptionStatus(status string) store.Status {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active":
		return store.StatusActive
	case "trialing":
		return store.StatusTrialing
	case "past_due", "unpaid":
		return store.StatusPastDue
	case "canceled":
		return store.StatusCanceled
	case "incomplete", "incomplete_expired":
		return store.StatusIncomplete
	default:
		// Fail closed: an unknown status should not look paid.
		return store.StatusIncomplete
	}
}

// PlanFromProductName derives the internal plan tier from a Stripe product
// display name. Unrecognized names fail closed (free).
func PlanFromProductName(name string) store.Plan {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(normalized, "team"):
		return store.PlanTeam
	case strings.Contains(normalized, "pro"):
		return store.PlanPro
	default:
		return store.PlanFree
	}
}

// IsSafeStripeID validates that a Stripe ID (cus_..., sub_...) is safe for
// use as a lookup key.
func IsSafeStripeID(stripeID string) bool {
	if len(stripeID) < 5 || len(stripeID) > 128 {
		return false
	}
	for i := 0; i < len(stripeID); i++ {
		c := stripeID[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			continue
		}
		return false
	}
	return true
}
