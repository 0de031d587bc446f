// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/checkout"
	"github.com/atelier-textile/storefront-api/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler handles checkout, reconciliation and session lookup
type CheckoutHandler struct {
	checkoutService *checkout.Service
	cartService     *cart.Service
	logger          logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, cartService *cart.Service, logger logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cartService:     cartService,
		logger:          logger,
	}
}

// Checkout handles POST /checkout. Lines are taken from the body, or from
// the session cart when the body has none. The user id of a verified
// access token wins over the one in the body.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		req.UserID = &userID
		if req.Email == "" {
			req.Email, _ = middleware.GetUserEmailFromContext(c)
		}
	}

	req.CartSessionID = sessionID(c)
	if len(req.Items) == 0 && req.CartSessionID != "" && h.cartService != nil {
		view, err := h.cartService.Get(c.Request.Context(), req.CartSessionID)
		if err != nil {
			respondError(c, h.logger, err, "Failed to load cart")
			return
		}
		req.Items = checkout.LinesFromCart(view.Items)
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create checkout session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateOrderStatus handles POST /orders/status, called when the customer
// returns from the payment page
func (h *CheckoutHandler) UpdateOrderStatus(c *gin.Context) {
	var req checkout.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		req.UserID = &userID
	}

	result, err := h.checkoutService.Reconcile(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSession handles GET /checkout/sessions/:id
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	summary, err := h.checkoutService.LookupSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve checkout session")
		return
	}

	c.JSON(http.StatusOK, summary)
}
