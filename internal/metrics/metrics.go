package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuardDecisionsTotal counts route guard outcomes by route class and action.
	GuardDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchkit",
		Subsystem: "guard",
		Name:      "decisions_total",
		Help:      "Route guard decisions by route class and action.",
	}, []string{"class", "action"})

	// WebhookRequestsTotal counts Stripe webhook requests by event type and status.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchkit",
		Subsystem: "billing",
		Name:      "webhook_requests_total",
		Help:      "Total Stripe webhook requests by event type and HTTP status.",
	}, []string{"event_type", "status"})

	// WebhookDuration tracks Stripe webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "launchkit",
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// ReconcileTotal counts reconciliation outcomes per event kind.
	ReconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchkit",
		Subsystem: "billing",
		Name:      "reconcile_total",
		Help:      "Subscription reconciliations by event kind and outcome.",
	}, []string{"event", "outcome"})
)
