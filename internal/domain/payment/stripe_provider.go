// internal/domain/payment/stripe_provider.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/client"
)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	ListLineItems(params *stripe.CheckoutSessionListLineItemsParams) *session.LineItemIter
}

// StripeProviderConfig configures the StripeProvider
type StripeProviderConfig struct {
	APIKey   string
	Backends *stripe.Backends
	Logger   logrus.FieldLogger
	Sessions stripeSessionAPI
}

// StripeProvider creates and reads Stripe Checkout sessions
type StripeProvider struct {
	sessions stripeSessionAPI
	logger   logrus.FieldLogger
}

// NewStripeProvider constructs a Stripe provider
func NewStripeProvider(cfg StripeProviderConfig) (*StripeProvider, error) {
	sessions := cfg.Sessions
	if sessions == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		sc := client.New(apiKey, cfg.Backends)
		sessions = sc.CheckoutSessions
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &StripeProvider{
		sessions: sessions,
		logger:   logger,
	}, nil
}

// CreateCheckoutSession creates a hosted payment page for the given lines
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.Locale != "" {
		params.Locale = stripe.String(strings.ToLower(req.Locale))
	}
	if len(req.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.AllowedCountries),
		}
	}

	currency := strings.ToLower(req.Currency)
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		line := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(max(item.Quantity, 1)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		}
		if item.Description != "" {
			line.PriceData.ProductData.Description = stripe.String(item.Description)
		}
		if item.ImageURL != "" {
			line.PriceData.ProductData.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		lineItems = append(lineItems, line)
	}
	params.LineItems = lineItems

	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata))
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: make(map[string]string, len(req.Metadata)),
		}
		for k, v := range req.Metadata {
			params.Metadata[k] = v
			params.PaymentIntentData.Metadata[k] = v
		}
	}

	cs, err := p.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	out := sessionFromStripe(cs)
	p.logger.WithFields(logrus.Fields{
		"session_id":     out.ID,
		"payment_intent": out.PaymentIntentID,
		"order_id":       req.Metadata[MetadataOrderID],
	}).Info("stripe checkout session created")

	return out, nil
}

// GetCheckoutSession retrieves a checkout session with its payment intent
func (p *StripeProvider) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	cs, err := p.sessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get checkout session: %w", err)
	}
	return sessionFromStripe(cs), nil
}

// ListSessionLineItems returns the line items recorded on a session
func (p *StripeProvider) ListSessionLineItems(ctx context.Context, id string) ([]SessionLineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(id),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	iter := p.sessions.ListLineItems(params)
	var items []SessionLineItem
	for iter.Next() {
		li := iter.LineItem()
		items = append(items, SessionLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			AmountTotal: li.AmountTotal,
			Currency:    string(li.Currency),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list session line items: %w", err)
	}
	return items, nil
}

func sessionFromStripe(cs *stripe.CheckoutSession) *Session {
	if cs == nil {
		return &Session{}
	}

	out := &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		CustomerEmail: cs.CustomerEmail,
		Metadata:      cs.Metadata,
	}
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}
	if d := cs.CustomerDetails; d != nil {
		if d.Email != "" {
			out.CustomerEmail = d.Email
		}
		out.CustomerName = d.Name
	}
	if sd := cs.ShippingDetails; sd != nil && sd.Address != nil {
		out.Shipping = &Shipping{
			Name:       sd.Name,
			Phone:      sd.Phone,
			Line1:      sd.Address.Line1,
			Line2:      sd.Address.Line2,
			City:       sd.Address.City,
			PostalCode: sd.Address.PostalCode,
			State:      sd.Address.State,
			Country:    sd.Address.Country,
		}
	}
	return out
}
