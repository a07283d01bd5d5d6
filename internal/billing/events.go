package billing

import (
	"encoding/json"
	"strings"
)

// CheckoutSession is a minimal representation of a Stripe
// checkout.session.completed event. ClientReferenceID carries the internal
// user ID supplied when the checkout was created.
type CheckoutSession struct {
	ID                string            `json:"id"`
	Mode              string            `json:"mode"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// ProductRef is the expanded product attached to a price. When the event
// carries an unexpanded product (a bare ID string), the ref stays zero and
// the reconciler falls back to the default plan.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON tolerates the unexpanded form, where product is a plain ID
// string instead of an object.
func (p *ProductRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		*p = ProductRef{}
		return nil
	}
	type plain ProductRef
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = ProductRef(v)
	return nil
}

// PriceRef is the price of a subscription line item.
type PriceRef struct {
	ID      string     `json:"id"`
	Product ProductRef `json:"product"`
}

// SubscriptionItem is one line item of a subscription event.
type SubscriptionItem struct {
	Price PriceRef `json:"price"`
}

// SubscriptionEvent is a minimal representation of a Stripe
// customer.subscription.* event.
type SubscriptionEvent struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	Items    struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

// UserID returns the internal user ID attached to the subscription's
// metadata at creation time, or "" when absent.
func (s *SubscriptionEvent) UserID() string {
	return strings.TrimSpace(s.Metadata["userId"])
}

// FirstProduct returns the product ID and name from the first line item
// that carries an expanded product. Both are "" when the expansion is
// missing.
func (s *SubscriptionEvent) FirstProduct() (id, name string) {
	for _, item := range s.Items.Data {
		if item.Price.Product.ID != "" || item.Price.Product.Name != "" {
			return item.Price.Product.ID, item.Price.Product.Name
		}
	}
	return "", ""
}
