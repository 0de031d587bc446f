// internal/domain/checkout/reconcile.go
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReconcileRequest represents the order status update request sent by the
// browser after returning from the payment page
type ReconcileRequest struct {
	SessionID string     `json:"sessionId" binding:"required"`
	UserID    *uuid.UUID `json:"userId"`
}

// ReconcileResult is the reconciled order
type ReconcileResult struct {
	Success bool         `json:"success"`
	Order   *order.Order `json:"order"`
}

// Reconcile confirms a paid session without waiting for the webhook and
// attributes the order to a user. An order owner that is already set is
// never replaced. The session cart is emptied on a best effort basis.
func (s *Service) Reconcile(ctx context.Context, req *ReconcileRequest) (*ReconcileResult, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsPaid() {
		return nil, fmt.Errorf("%w: status %q", ErrSessionNotPaid, sess.PaymentStatus)
	}

	log := s.logger.WithField("session_id", sess.ID)

	o, err := s.findSessionOrder(ctx, sess)
	if err != nil {
		return nil, err
	}
	log = log.WithField("order_id", o.ID)

	if userID := targetUser(req.UserID, sess.Metadata); userID != nil {
		updated, assigned, err := s.orders.AssignUser(ctx, o.ID, *userID)
		if err != nil {
			return nil, err
		}
		o = updated
		if assigned {
			log.WithField("user_id", *userID).Info("order attributed to user")
		} else if o.UserID != nil && *o.UserID != *userID {
			log.WithFields(logrus.Fields{
				"user_id":  *o.UserID,
				"rejected": *userID,
			}).Warn("order already belongs to another user")
		}
	}

	o, applied, err := s.orders.Transition(ctx, o.ID, order.StatusProcessing, order.SourceReconcile, "payment confirmed by session lookup",
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
			return changed
		})
	if err != nil {
		return nil, err
	}
	if applied {
		log.Info("order paid")
	}
	if _, err := s.clearSessionCart(ctx, sess.Metadata[payment.MetadataCartSession]); err != nil {
		log.WithError(err).Warn("failed to clear session cart")
	}

	contact := s.customers.ResolveContact(ctx, o.UserID, customer.Contact{
		Email: firstNonEmpty(o.Email, sess.CustomerEmail),
		Name:  firstNonEmpty(o.CustomerName, sess.CustomerName),
	})
	s.sendConfirmation(ctx, o, contact)

	return &ReconcileResult{Success: true, Order: o}, nil
}

func (s *Service) findSessionOrder(ctx context.Context, sess *payment.Session) (*order.Order, error) {
	if id, err := metadataOrderID(sess.Metadata); err == nil {
		o, err := s.orders.Get(ctx, id)
		if err == nil {
			return o, nil
		}
		if !order.IsNotFound(err) {
			return nil, err
		}
	}

	o, err := s.orders.GetByCheckoutSession(ctx, sess.ID)
	if err != nil {
		if order.IsNotFound(err) {
			return nil, fmt.Errorf("%w: session %s", ErrUnknownPaymentReference, sess.ID)
		}
		return nil, err
	}
	return o, nil
}

// targetUser picks the explicit user first, then the session metadata
func targetUser(explicit *uuid.UUID, meta map[string]string) *uuid.UUID {
	if explicit != nil && *explicit != uuid.Nil {
		return explicit
	}
	if id, ok := metadataUserID(meta); ok {
		return &id
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
