// internal/domain/checkout/lookup.go
package checkout

import (
	"context"
	"strings"

	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
)

// SessionSourceOrder and SessionSourceStripe tell where a session summary came from
const (
	SessionSourceOrder  = "order"
	SessionSourceStripe = "stripe"
)

// SessionSummary is what the confirmation page shows for a payment session
type SessionSummary struct {
	Source    string                    `json:"source"`
	Order     *order.Order              `json:"order,omitempty"`
	LineItems []payment.SessionLineItem `json:"line_items,omitempty"`
}

// LookupSession returns the order created for a payment session, falling
// back to the line items recorded by the payment provider
func (s *Service) LookupSession(ctx context.Context, sessionID string) (*SessionSummary, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}

	o, err := s.orders.GetByCheckoutSession(ctx, sessionID)
	if err == nil {
		return &SessionSummary{Source: SessionSourceOrder, Order: o}, nil
	}
	if !order.IsNotFound(err) {
		return nil, err
	}

	items, err := s.gateway.ListSessionLineItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionSummary{Source: SessionSourceStripe, LineItems: items}, nil
}
