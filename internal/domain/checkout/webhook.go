// internal/domain/checkout/webhook.go
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventOutcome describes what a webhook event did
type EventOutcome struct {
	OrderID      uuid.UUID `json:"order_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	Applied      bool      `json:"applied"`
	Ignored      bool      `json:"ignored,omitempty"`
	CartsCleared int64     `json:"carts_cleared,omitempty"`
}

// HandleEvent applies a verified payment notification. Unknown event types
// are acknowledged without action. Replays converge through the order
// status machine.
func (s *Service) HandleEvent(ctx context.Context, event *payment.Event) (*EventOutcome, error) {
	log := s.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	switch event.Type {
	case payment.EventCheckoutSessionCompleted:
		sess, err := event.CheckoutSession()
		if err != nil {
			return nil, err
		}
		return s.completeSession(ctx, sess, log)

	case payment.EventPaymentIntentFailed:
		intent, err := event.PaymentIntent()
		if err != nil {
			return nil, err
		}
		return s.failPayment(ctx, intent, log)

	default:
		log.Debug("webhook event ignored")
		return &EventOutcome{Ignored: true}, nil
	}
}

func (s *Service) completeSession(ctx context.Context, sess *payment.Session, log logrus.FieldLogger) (*EventOutcome, error) {
	orderID, err := metadataOrderID(sess.Metadata)
	if err != nil {
		return nil, err
	}
	log = log.WithFields(logrus.Fields{"order_id": orderID, "session_id": sess.ID})

	o, applied, err := s.orders.Transition(ctx, orderID, order.StatusProcessing, order.SourceWebhook, "checkout session completed",
		func(o *order.Order) bool {
			changed := false
			if addr := addressOf(sess.Shipping); addr != nil && o.ShippingAddress == nil {
				o.ShippingAddress = addr
				changed = true
			}
			if sess.PaymentIntentID != "" && o.PaymentIntentID == "" {
				o.PaymentIntentID = sess.PaymentIntentID
				changed = true
			}
			if sess.ID != "" && o.CheckoutSessionID == "" {
				o.CheckoutSessionID = sess.ID
				changed = true
			}
			name := sess.CustomerName
			if name == "" && sess.Shipping != nil {
				name = sess.Shipping.Name
			}
			if order.SetContact(o, sess.CustomerEmail, name) {
				changed = true
			}
			return changed
		})
	if err != nil {
		if order.IsNotFound(err) {
			return nil, fmt.Errorf("%w: order %s", ErrUnknownPaymentReference, orderID)
		}
		return nil, err
	}

	out := &EventOutcome{OrderID: o.ID, Status: string(o.Status), Applied: applied}

	if userID, ok := metadataUserID(sess.Metadata); ok {
		n, err := s.carts.ClearForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		out.CartsCleared = n
	}
	n, err := s.clearSessionCart(ctx, sess.Metadata[payment.MetadataCartSession])
	if err != nil {
		return nil, err
	}
	out.CartsCleared += n

	if applied {
		log.Info("order paid")
		contact := s.customers.ResolveContact(ctx, o.UserID, customer.Contact{Email: o.Email, Name: o.CustomerName})
		s.sendConfirmation(ctx, o, contact)
	} else {
		log.WithField("status", o.Status).Info("completed session replayed, status unchanged")
	}
	return out, nil
}

func (s *Service) failPayment(ctx context.Context, intent *payment.Intent, log logrus.FieldLogger) (*EventOutcome, error) {
	log = log.WithField("payment_intent", intent.ID)

	o, err := s.orders.GetByPaymentIntent(ctx, intent.ID)
	if err != nil {
		if !order.IsNotFound(err) {
			return nil, err
		}
		orderID, metaErr := metadataOrderID(intent.Metadata)
		if metaErr == nil {
			o, err = s.orders.Get(ctx, orderID)
		}
		if metaErr != nil || order.IsNotFound(err) {
			// not ours, nothing to retry
			log.Warn("failed payment does not match any order")
			return &EventOutcome{Ignored: true}, nil
		}
		if err != nil {
			return nil, err
		}
	}

	note := "payment failed"
	if intent.Failure != "" {
		note = "payment failed: " + intent.Failure
	}
	updated, applied, err := s.orders.Transition(ctx, o.ID, order.StatusFailed, order.SourceWebhook, note, nil)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"order_id": updated.ID,
		"status":   updated.Status,
		"applied":  applied,
	}).Warn("payment failed")

	return &EventOutcome{OrderID: updated.ID, Status: string(updated.Status), Applied: applied}, nil
}

// clearSessionCart empties the browser cart a paid session was created from
// and deletes the carts recorded for it. Clearing twice is a no-op.
func (s *Service) clearSessionCart(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, nil
	}
	var n int64
	if s.carts != nil {
		cleared, err := s.carts.ClearForSession(ctx, sessionID)
		if err != nil {
			return 0, err
		}
		n = cleared
	}
	if s.sessionCarts != nil {
		if err := s.sessionCarts.Clear(ctx, sessionID); err != nil {
			return n, fmt.Errorf("failed to clear session cart: %w", err)
		}
	}
	return n, nil
}

func metadataOrderID(meta map[string]string) (uuid.UUID, error) {
	raw := meta[payment.MetadataOrderID]
	if raw == "" {
		return uuid.Nil, ErrMissingOrderMetadata
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not an order id", ErrMissingOrderMetadata, raw)
	}
	return id, nil
}

func metadataUserID(meta map[string]string) (uuid.UUID, bool) {
	raw := meta[payment.MetadataUserID]
	if raw == "" || raw == payment.GuestUserID {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func addressOf(sh *payment.Shipping) *order.Address {
	if sh == nil || (sh.Line1 == "" && sh.City == "" && sh.PostalCode == "") {
		return nil
	}
	return &order.Address{
		Name:       sh.Name,
		Line1:      sh.Line1,
		Line2:      sh.Line2,
		City:       sh.City,
		PostalCode: sh.PostalCode,
		State:      sh.State,
		Country:    sh.Country,
		Phone:      sh.Phone,
	}
}

// IsClientError reports whether err was caused by the request rather than
// by the server
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidLine) ||
		errors.Is(err, ErrMissingOrderMetadata) ||
		errors.Is(err, ErrSessionNotPaid) ||
		errors.Is(err, ErrMissingSessionID) ||
		errors.Is(err, ErrUnknownPaymentReference) ||
		errors.Is(err, payment.ErrInvalidPayload) ||
		errors.Is(err, order.ErrNoItems)
}
