package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/launchkit/launchkit/internal/metrics"
	"github.com/launchkit/launchkit/internal/store"
	"github.com/rs/zerolog/log"
	stripelib "github.com/stripe/stripe-go/v82"
	stripeprice "github.com/stripe/stripe-go/v82/price"
	stripesub "github.com/stripe/stripe-go/v82/subscription"
)

// Reconciler converts Stripe webhook events into idempotent upserts of the
// local subscription record. It holds no state across invocations; retry on
// failure belongs to Stripe's webhook redelivery, not to this type.
type Reconciler struct {
	store *store.SubscriptionStore

	retrieveSubscription func(id string, params *stripelib.SubscriptionParams) (*stripelib.Subscription, error)
	listPrices           func(params *stripelib.PriceListParams) ([]*stripelib.Price, error)
}

// NewReconciler creates a Reconciler backed by the live Stripe client.
func NewReconciler(st *store.SubscriptionStore) *Reconciler {
	return &Reconciler{
		store:                st,
		retrieveSubscription: stripesub.Get,
		listPrices:           listStripePrices,
	}
}

func listStripePrices(params *stripelib.PriceListParams) ([]*stripelib.Price, error) {
	iter := stripeprice.List(params)
	var prices []*stripelib.Price
	for iter.Next() {
		prices = append(prices, iter.Price())
	}
	return prices, iter.Err()
}

// HandleCheckout resolves a checkout.session.completed event into the
// canonical subscription record. A session without a client reference
// cannot be attributed to a user: it is logged and dropped, because
// redelivery would not make the missing ID appear.
func (r *Reconciler) HandleCheckout(ctx context.Context, session CheckoutSession) error {
	userID := strings.TrimSpace(session.ClientReferenceID)
	if userID == "" {
		log.Warn().
			Str("checkout_session_id", session.ID).
			Str("customer_id", session.Customer).
			Msg("Checkout session has no client reference, dropping event")
		metrics.ReconcileTotal.WithLabelValues("checkout", "discarded").Inc()
		return nil
	}

	subscriptionID := strings.TrimSpace(session.Subscription)
	if !IsSafeStripeID(subscriptionID) {
		return fmt.Errorf("checkout session %s: invalid subscription id %q", session.ID, subscriptionID)
	}

	params := &stripelib.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("items.data.price.product")
	sub, err := r.retrieveSubscription(subscriptionID, params)
	if err != nil {
		metrics.ReconcileTotal.WithLabelValues("checkout", "error").Inc()
		return fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err)
	}

	productID, planName := firstProductFromSubscription(sub)
	if planName == "" {
		planName = defaultPlanName
	}

	return r.upsert(reconcileInput{
		event:          "checkout",
		userID:         userID,
		customerID:     strings.TrimSpace(session.Customer),
		subscriptionID: subscriptionID,
		productID:      productID,
		planName:       planName,
		status:         string(sub.Status),
	})
}

// HandleSubscriptionChange applies a customer.subscription.created/updated/
// deleted event. The event carries the subscription object directly, so no
// remote lookup is needed. Events that cannot be attributed to a user are
// logged and dropped.
func (r *Reconciler) HandleSubscriptionChange(ctx context.Context, ev SubscriptionEvent) error {
	userID := ev.UserID()
	if userID == "" {
		log.Warn().
			Str("subscription_id", ev.ID).
			Str("customer_id", ev.Customer).
			Msg("Subscription event has no userId metadata, dropping event")
		metrics.ReconcileTotal.WithLabelValues("subscription_change", "discarded").Inc()
		return nil
	}

	productID, planName := ev.FirstProduct()
	if planName == "" {
		planName = defaultPlanName
	}

	return r.upsert(reconcileInput{
		event:          "subscription_change",
		userID:         userID,
		customerID:     strings.TrimSpace(ev.Customer),
		subscriptionID: strings.TrimSpace(ev.ID),
		productID:      productID,
		planName:       planName,
		status:         ev.Status,
	})
}

type reconcileInput struct {
	event          string
	userID         string
	customerID     string
	subscriptionID string
	productID      string
	planName       string
	status         string
}

// upsert writes the normalized record. The store applies last-write-wins by
// arrival time; provider event ordering is not compared (see DESIGN.md).
func (r *Reconciler) upsert(in reconcileInput) error {
	rec := &store.SubscriptionRecord{
		UserID:               in.userID,
		Plan:                 PlanFromProductName(in.planName),
		PlanName:             in.planName,
		Status:               MapSubscriptionStatus(in.status),
		StripeCustomerID:     in.customerID,
		StripeSubscriptionID: in.subscriptionID,
		StripeProductID:      in.productID,
	}
	if err := r.store.Upsert(rec); err != nil {
		log.Error().Err(err).
			Str("user_id", in.userID).
			Str("subscription_id", in.subscriptionID).
			Msg("Subscription upsert failed")
		metrics.ReconcileTotal.WithLabelValues(in.event, "error").Inc()
		return fmt.Errorf("persist subscription for user %q: %w", in.userID, err)
	}

	log.Info().
		Str("user_id", in.userID).
		Str("subscription_id", in.subscriptionID).
		Str("plan", string(rec.Plan)).
		Str("status", string(rec.Status)).
		Msg("Subscription reconciled")
	metrics.ReconcileTotal.WithLabelValues(in.event, "applied").Inc()
	return nil
}

func firstProductFromSubscription(sub *stripelib.Subscription) (productID, planName string) {
	if sub == nil || sub.Items == nil {
		return "", ""
	}
	for _, item := range sub.Items.Data {
		if item == nil || item.Price == nil || item.Price.Product == nil {
			continue
		}
		return item.Price.Product.ID, item.Price.Product.Name
	}
	return "", ""
}
