// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/customization"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidLine             = errors.New("invalid cart line")
	ErrMissingOrderMetadata    = errors.New("checkout session has no order metadata")
	ErrSessionNotPaid          = errors.New("checkout session is not paid")
	ErrMissingSessionID        = errors.New("session id is required")
	ErrUnknownPaymentReference = errors.New("payment does not match any order")
)

// Gateway creates and reads hosted payment sessions
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*payment.Session, error)
	ListSessionLineItems(ctx context.Context, id string) ([]payment.SessionLineItem, error)
}

// Pricer recomputes the unit price of a product configuration
type Pricer interface {
	QuotePrice(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, c *customization.Customization) (*cart.Quote, error)
}

// SessionCarts empties the server-side cart of a browser session
type SessionCarts interface {
	Clear(ctx context.Context, sessionID string) error
}

// Notifier sends the order confirmation e-mail
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order, to customer.Contact) bool
}

// Options holds the checkout settings taken from configuration
type Options struct {
	Currency         string
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
	ShippingFee      int64
	ShippingLabel    string
	Locale           string
}

// Service orchestrates checkout, payment notifications and reconciliation
type Service struct {
	orders       *order.Service
	carts        *cart.RecordService
	sessionCarts SessionCarts
	customers    *customer.Service
	gateway      Gateway
	pricer       Pricer
	notifier     Notifier
	opts         Options
	logger       logrus.FieldLogger
}

// Deps groups the collaborators of the checkout service
type Deps struct {
	Orders       *order.Service
	Carts        *cart.RecordService
	SessionCarts SessionCarts
	Customers    *customer.Service
	Gateway      Gateway
	Pricer       Pricer
	Notifier     Notifier
}

// NewService creates a new checkout service
func NewService(deps Deps, opts Options, logger logrus.FieldLogger) *Service {
	if opts.ShippingLabel == "" {
		opts.ShippingLabel = "Livraison"
	}
	return &Service{
		orders:       deps.Orders,
		carts:        deps.Carts,
		sessionCarts: deps.SessionCarts,
		customers:    deps.Customers,
		gateway:      deps.Gateway,
		pricer:       deps.Pricer,
		notifier:     deps.Notifier,
		opts:         opts,
		logger:       logger,
	}
}

// LineRequest is one cart line submitted for checkout
type LineRequest struct {
	ProductID     uuid.UUID                    `json:"product_id" binding:"required"`
	VariantID     *uuid.UUID                   `json:"variant_id"`
	Name          string                       `json:"name"`
	UnitPrice     int64                        `json:"unit_price"`
	Quantity      int                          `json:"quantity"`
	Size          string                       `json:"size"`
	Color         string                       `json:"color"`
	ImageURL      string                       `json:"image_url"`
	Customization *customization.Customization `json:"customization"`
}

// Request represents a checkout request
type Request struct {
	Items  []LineRequest `json:"items"`
	Email  string        `json:"email" binding:"omitempty,email"`
	UserID *uuid.UUID    `json:"user_id"`

	// CartSessionID is the session cart the lines come from, if any
	CartSessionID string `json:"-"`
}

// Result is returned once the payment page exists
type Result struct {
	OrderID uuid.UUID `json:"orderId"`
	URL     string    `json:"url"`
}

// LinesFromCart converts session cart lines into checkout lines
func LinesFromCart(items []cart.Item) []LineRequest {
	out := make([]LineRequest, 0, len(items))
	for _, it := range items {
		out = append(out, LineRequest{
			ProductID:     it.ProductID,
			VariantID:     it.VariantID,
			Name:          it.Name,
			UnitPrice:     it.UnitPrice,
			Quantity:      it.Quantity,
			Size:          it.Size,
			Color:         it.Color,
			ImageURL:      it.ImageURL,
			Customization: it.Customization,
		})
	}
	return out
}

// Checkout creates a pending order and the hosted payment page for it.
// A failure after the order is stored leaves it pending.
func (s *Service) Checkout(ctx context.Context, req *Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for i, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: line %d has quantity %d", ErrInvalidLine, i+1, line.Quantity)
		}
	}

	lines, err := s.priceLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if s.carts != nil {
		if _, err := s.carts.Sync(ctx, req.UserID, req.CartSessionID, lines); err != nil {
			s.logger.WithError(err).Warn("failed to record cart at checkout")
		}
	}

	o := &order.Order{
		UserID:       req.UserID,
		Email:        strings.TrimSpace(req.Email),
		ShippingCost: s.opts.ShippingFee,
		Currency:     strings.ToLower(s.opts.Currency),
		Items:        orderItems(lines),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	log := s.logger.WithField("order_id", o.ID)

	userRef := payment.GuestUserID
	if req.UserID != nil {
		userRef = req.UserID.String()
	}
	metadata := map[string]string{
		payment.MetadataOrderID: o.ID.String(),
		payment.MetadataUserID:  userRef,
	}
	if req.CartSessionID != "" {
		metadata[payment.MetadataCartSession] = req.CartSessionID
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		Items:            s.sessionLines(lines),
		Currency:         o.Currency,
		SuccessURL:       s.opts.SuccessURL,
		CancelURL:        s.opts.CancelURL,
		CustomerEmail:    o.Email,
		AllowedCountries: s.opts.AllowedCountries,
		Locale:           s.opts.Locale,
		IdempotencyKey:   "checkout-" + o.ID.String(),
		Metadata:         metadata,
	})
	if err != nil {
		log.WithError(err).Error("payment session failed, order left pending")
		return nil, err
	}

	if err := s.orders.AttachPayment(ctx, o.ID, sess.ID, sess.PaymentIntentID); err != nil {
		log.WithError(err).WithField("session_id", sess.ID).Error("failed to store payment reference")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"total":      o.TotalAmount,
	}).Info("checkout session ready")

	return &Result{OrderID: o.ID, URL: sess.URL}, nil
}

// priceLines replaces submitted unit prices with catalog prices when a
// pricer is configured. Customized lines must be complete.
func (s *Service) priceLines(ctx context.Context, reqs []LineRequest) ([]cart.Item, error) {
	items := make([]cart.Item, 0, len(reqs))
	for i, r := range reqs {
		it := cart.Item{
			ProductID:     r.ProductID,
			VariantID:     r.VariantID,
			Name:          strings.TrimSpace(r.Name),
			UnitPrice:     r.UnitPrice,
			Quantity:      r.Quantity,
			Size:          r.Size,
			Color:         r.Color,
			ImageURL:      r.ImageURL,
			Customization: r.Customization,
		}
		if it.Customization.IsEmpty() {
			it.Customization = nil
		}

		complete := it.Customization == nil || customization.IsComplete(it.Customization)

		if s.pricer != nil {
			quote, err := s.pricer.QuotePrice(ctx, r.ProductID, r.VariantID, it.Customization)
			if err != nil {
				if isLineError(err) {
					return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidLine, i+1, err)
				}
				return nil, fmt.Errorf("failed to price line %d: %w", i+1, err)
			}
			complete = it.Customization == nil || quote.CustomizationComplete
			if quote.UnitPrice != it.UnitPrice {
				s.logger.WithFields(logrus.Fields{
					"product_id": r.ProductID,
					"submitted":  it.UnitPrice,
					"catalog":    quote.UnitPrice,
				}).Warn("cart line repriced at checkout")
				it.UnitPrice = quote.UnitPrice
			}
		}

		if !complete {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidLine, i+1, cart.ErrIncompleteCustomization)
		}
		if it.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: negative price for %s", ErrInvalidLine, it.Name)
		}
		if it.Name == "" {
			it.Name = "Article"
		}
		items = append(items, it)
	}
	return items, nil
}

// isLineError reports whether a pricing failure comes from the submitted line
func isLineError(err error) bool {
	return errors.Is(err, cart.ErrProductUnavailable) ||
		errors.Is(err, cart.ErrVariantNotFound) ||
		errors.Is(err, cart.ErrNotCustomizable)
}

func (s *Service) sessionLines(items []cart.Item) []payment.LineItem {
	lines := make([]payment.LineItem, 0, len(items)+1)
	for _, it := range items {
		lines = append(lines, payment.LineItem{
			Name:        it.Name,
			Description: lineDescription(it),
			UnitAmount:  it.UnitPrice,
			Quantity:    int64(it.Quantity),
			ImageURL:    it.ImageURL,
		})
	}
	lines = append(lines, payment.LineItem{
		Name:       s.opts.ShippingLabel,
		UnitAmount: s.opts.ShippingFee,
		Quantity:   1,
	})
	return lines
}

func lineDescription(it cart.Item) string {
	var parts []string
	if it.Size != "" {
		parts = append(parts, it.Size)
	}
	if it.Color != "" {
		parts = append(parts, it.Color)
	}
	desc := strings.Join(parts, " / ")
	if summary := it.Customization.Summary(); summary != "" {
		if desc != "" {
			desc += " - "
		}
		desc += summary
	}
	return desc
}

func orderItems(items []cart.Item) []order.Item {
	out := make([]order.Item, 0, len(items))
	for _, it := range items {
		out = append(out, order.Item{
			ProductID:         it.ProductID,
			ProductVariantID:  it.VariantID,
			Name:              it.Name,
			Quantity:          it.Quantity,
			PricePerUnit:      it.UnitPrice,
			Size:              it.Size,
			Color:             it.Color,
			CustomizationData: it.Customization,
		})
	}
	return out
}
