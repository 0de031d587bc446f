// internal/domain/checkout/confirmation.go
package checkout

import (
	"context"

	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
)

// sendConfirmation e-mails the order confirmation at most once per order.
// Failures are logged and never returned.
func (s *Service) sendConfirmation(ctx context.Context, o *order.Order, to customer.Contact) {
	log := s.logger.WithField("order_id", o.ID)

	if s.notifier == nil {
		return
	}
	if o.Status != order.StatusProcessing {
		return
	}
	if to.Email == "" {
		log.Warn("no recipient for order confirmation")
		return
	}

	claimed, ok, err := s.orders.ClaimConfirmation(ctx, o.ID)
	if err != nil {
		log.WithError(err).Error("failed to claim order confirmation")
		return
	}
	if !ok {
		log.Debug("order confirmation already sent")
		return
	}

	if s.notifier.SendOrderConfirmation(ctx, claimed, to) {
		log.Info("order confirmation sent")
		return
	}

	if err := s.orders.ReleaseConfirmation(ctx, o.ID); err != nil {
		log.WithError(err).Error("failed to release order confirmation claim")
	}
}
