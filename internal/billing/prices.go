package billing

import (
	"context"
	"fmt"

	stripelib "github.com/stripe/stripe-go/v82"
)

// Price is the flattened display shape of an active recurring Stripe price.
type Price struct {
	ID              string `json:"id"`
	ProductID       string `json:"productId"`
	UnitAmount      int64  `json:"unitAmount"`
	Currency        string `json:"currency"`
	Interval        string `json:"interval"`
	TrialPeriodDays int64  `json:"trialPeriodDays,omitempty"`
}

// ListActivePrices queries Stripe for active recurring prices and flattens
// them for display. Read-only; provider errors propagate unchanged.
func (r *Reconciler) ListActivePrices(ctx context.Context) ([]Price, error) {
	params := &stripelib.PriceListParams{
		Active: stripelib.Bool(true),
		Type:   stripelib.String(string(stripelib.PriceTypeRecurring)),
	}
	params.Context = ctx
	params.AddExpand("data.product")

	prices, err := r.listPrices(params)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}

	out := make([]Price, 0, len(prices))
	for _, p := range prices {
		if p == nil {
			continue
		}
		flat := Price{
			ID:         p.ID,
			UnitAmount: p.UnitAmount,
			Currency:   string(p.Currency),
		}
		if p.Product != nil {
			flat.ProductID = p.Product.ID
		}
		if p.Recurring != nil {
			flat.Interval = string(p.Recurring.Interval)
			flat.TrialPeriodDays = p.Recurring.TrialPeriodDays
		}
		out = append(out, flat)
	}
	return out, nil
}
