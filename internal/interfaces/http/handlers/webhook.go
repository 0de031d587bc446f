// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"io"
	"net/http"

	"github.com/atelier-textile/storefront-api/internal/domain/checkout"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StripeSignatureHeader carries the webhook signature
const StripeSignatureHeader = "Stripe-Signature"

// WebhookHandler receives payment provider notifications
type WebhookHandler struct {
	verifier        *payment.WebhookVerifier
	checkoutService *checkout.Service
	logger          logrus.FieldLogger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier *payment.WebhookVerifier, checkoutService *checkout.Service, logger logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{
		verifier:        verifier,
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// Stripe handles POST /webhooks/stripe. The raw body is needed to verify
// the signature, so it is read before any binding.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	event, err := h.verifier.Verify(payload, c.GetHeader(StripeSignatureHeader))
	if err != nil {
		h.logger.WithError(err).Warn("rejected webhook")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	outcome, err := h.checkoutService.HandleEvent(c.Request.Context(), event)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Warn("webhook event not applied")
		respondError(c, h.logger, err, "Failed to process webhook")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
		"outcome":  outcome,
	})
}
