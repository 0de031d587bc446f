// internal/domain/payment/types.go
package payment

import "errors"

// Payment session statuses reported by Stripe
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// Webhook event types handled by the shop
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
)

// Metadata keys attached to sessions and payment intents
const (
	MetadataOrderID     = "orderId"
	MetadataUserID      = "userId"
	MetadataCartSession = "cartSession"
	GuestUserID         = "guest"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

// LineItem is one priced line of a checkout session request
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
	ImageURL    string
}

// SessionRequest describes a hosted checkout page to create
type SessionRequest struct {
	Items            []LineItem
	Currency         string
	SuccessURL       string
	CancelURL        string
	CustomerEmail    string
	AllowedCountries []string
	Metadata         map[string]string
	Locale           string
	IdempotencyKey   string
}

// Session is the provider-independent view of a checkout session
type Session struct {
	ID              string            `json:"id"`
	URL             string            `json:"url,omitempty"`
	PaymentIntentID string            `json:"payment_intent_id,omitempty"`
	PaymentStatus   string            `json:"payment_status"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	CustomerEmail   string            `json:"customer_email,omitempty"`
	CustomerName    string            `json:"customer_name,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Shipping        *Shipping         `json:"shipping,omitempty"`
}

// IsPaid reports whether the session has been paid
func (s *Session) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// Shipping is the shipping contact collected by the checkout page
type Shipping struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country"`
}

// SessionLineItem is a line item as recorded on a session
type SessionLineItem struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
}

// Intent is the part of a payment intent the shop uses
type Intent struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Failure  string            `json:"failure,omitempty"`
}
