// internal/testutil/payment.go
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
)

// Gateway is a scripted payment gateway
type Gateway struct {
	mu        sync.Mutex
	Requests  []payment.SessionRequest
	Sessions  map[string]*payment.Session
	LineItems map[string][]payment.SessionLineItem
	// CreateErr makes CreateCheckoutSession fail with this error
	CreateErr error
	// NoIntent leaves PaymentIntentID empty on created sessions
	NoIntent bool
	created  int
}

// NewGateway creates a gateway without sessions
func NewGateway() *Gateway {
	return &Gateway{
		Sessions:  make(map[string]*payment.Session),
		LineItems: make(map[string][]payment.SessionLineItem),
	}
}

func (g *Gateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	g.created++
	sess := &payment.Session{
		ID:            fmt.Sprintf("cs_test_%d", g.created),
		URL:           fmt.Sprintf("https://checkout.stripe.test/cs_test_%d", g.created),
		PaymentStatus: payment.PaymentStatusUnpaid,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		Metadata:      req.Metadata,
	}
	if !g.NoIntent {
		sess.PaymentIntentID = fmt.Sprintf("pi_test_%d", g.created)
	}
	for _, it := range req.Items {
		sess.AmountTotal += it.UnitAmount * it.Quantity
	}
	g.Sessions[sess.ID] = sess
	return sess, nil
}

func (g *Gateway) GetCheckoutSession(_ context.Context, id string) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess, ok := g.Sessions[id]
	if !ok {
		return nil, fmt.Errorf("stripe: get checkout session: no such session %s", id)
	}
	c := *sess
	return &c, nil
}

func (g *Gateway) ListSessionLineItems(_ context.Context, id string) ([]payment.SessionLineItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	items, ok := g.LineItems[id]
	if !ok {
		return nil, fmt.Errorf("stripe: list session line items: no such session %s", id)
	}
	return items, nil
}

// MarkPaid sets a session's payment status to paid
func (g *Gateway) MarkPaid(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sess, ok := g.Sessions[id]; ok {
		sess.PaymentStatus = payment.PaymentStatusPaid
	}
}

// SentConfirmation is one recorded order confirmation
type SentConfirmation struct {
	OrderID string
	To      customer.Contact
}

// Notifier records order confirmations
type Notifier struct {
	mu   sync.Mutex
	Sent []SentConfirmation
	// Fail makes every send report failure
	Fail bool
}

func (n *Notifier) SendOrderConfirmation(_ context.Context, o *order.Order, to customer.Contact) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Fail {
		return false
	}
	n.Sent = append(n.Sent, SentConfirmation{OrderID: o.ID.String(), To: to})
	return true
}

// Count returns the number of confirmations sent
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Sent)
}
