package billing

import (
	"testing"

	"github.com/launchkit/launchkit/internal/store"
)

func TestMapSubscriptionStatus(t *testing.T) {
	tests := []struct {
		input string
		want  store.Status
	}{
		{"active", store.StatusActive},
		{"Active", store.StatusActive},
		{"trialing", store.StatusTrialing},
		{"past_due", store.StatusPastDue},
		{"unpaid", store.StatusPastDue},
		{"canceled", store.StatusCanceled},
		{"incomplete", store.StatusIncomplete},
		{"incomplete_expired", store.StatusIncomplete},
		{"paused", store.StatusIncomplete},
		{"unknown_status", store.StatusIncomplete},
		{"", store.StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := MapSubscriptionStatus(tt.input)
			if got != tt.want {
				t.Errorf("MapSubscriptionStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlanFromProductName(t *testing.T) {
	tests := []struct {
		name string
		want store.Plan
	}{
		{"Pro", store.PlanPro},
		{"Pro Plan", store.PlanPro},
		{"Team", store.PlanTeam},
		{"Team Plan", store.PlanTeam},
		{"Free", store.PlanFree},
		{"", store.PlanFree},
		{"Enterprise", store.PlanFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanFromProductName(tt.name)
			if got != tt.want {
				t.Errorf("PlanFromProductName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsSafeStripeID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"cus_test123", true},
		{"sub_abc-def", true},
		{"", false},
		{"ab", false},
		{"sub_../etc/passwd", false},
		{"sub test", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsSafeStripeID(tt.id)
			if got != tt.want {
				t.Errorf("IsSafeStripeID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
