// internal/domain/payment/webhook.go
package payment

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Event is a verified webhook notification
type Event struct {
	ID   string
	Type string
	raw  json.RawMessage
}

// WebhookVerifier checks Stripe-Signature headers against the endpoint secret
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a verifier for the given endpoint secret
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify authenticates the payload and decodes the event envelope
func (v *WebhookVerifier) Verify(payload []byte, signature string) (*Event, error) {
	if v.secret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil {
		out.raw = event.Data.Raw
	}
	return out, nil
}

// CheckoutSession decodes the event object as a checkout session
func (e *Event) CheckoutSession() (*Session, error) {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(e.raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return sessionFromStripe(&cs), nil
}

// PaymentIntent decodes the event object as a payment intent
func (e *Event) PaymentIntent() (*Intent, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(e.raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	out := &Intent{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Metadata: pi.Metadata,
	}
	if pi.LastPaymentError != nil {
		out.Failure = pi.LastPaymentError.Msg
	}
	return out, nil
}
