// internal/interfaces/http/handlers/contact.go
package handlers

import (
	"context"
	"net/http"

	"github.com/atelier-textile/storefront-api/internal/pkg/email"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Mailer sends the contact and quote forms to the shop
type Mailer interface {
	SendContact(ctx context.Context, req *email.ContactRequest) error
	SendQuote(ctx context.Context, req *email.QuoteRequest) error
}

// ContactHandler handles the contact and quote forms
type ContactHandler struct {
	mailer Mailer
	logger logrus.FieldLogger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(mailer Mailer, logger logrus.FieldLogger) *ContactHandler {
	return &ContactHandler{
		mailer: mailer,
		logger: logger,
	}
}

// Contact handles POST /contact
func (h *ContactHandler) Contact(c *gin.Context) {
	var req email.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	if err := h.mailer.SendContact(c.Request.Context(), &req); err != nil {
		h.logger.WithError(err).Error("failed to send contact message")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to send message",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// Quote handles POST /quote
func (h *ContactHandler) Quote(c *gin.Context) {
	var req email.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	if err := h.mailer.SendQuote(c.Request.Context(), &req); err != nil {
		h.logger.WithError(err).Error("failed to send quote request")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to send quote request",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
