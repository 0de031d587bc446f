// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"time"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/customization"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// CartSessionHeader carries the cart session for clients that do not keep cookies
	CartSessionHeader = "X-Cart-Session"
	cartSessionCookie = "cart_session"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	cookieTTL   time.Duration
	secure      bool
	logger      logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, cookieTTL time.Duration, secure bool, logger logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		cookieTTL:   cookieTTL,
		secure:      secure,
		logger:      logger,
	}
}

// PriceRequest asks for the unit price of a product configuration
type PriceRequest struct {
	ProductID     uuid.UUID                    `json:"product_id" binding:"required"`
	VariantID     *uuid.UUID                   `json:"variant_id"`
	Customization *customization.Customization `json:"customization"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.Get(c.Request.Context(), h.getOrCreateSessionID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    view,
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), h.getOrCreateSessionID(c), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    view,
	})
}

// UpdateItem handles PATCH /cart/items/:lineId. A zero quantity removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}
	if req.Quantity < 0 {
		respondError(c, h.logger, cart.ErrInvalidQuantity, "Invalid quantity")
		return
	}

	view, err := h.cartService.UpdateItem(c.Request.Context(), h.getOrCreateSessionID(c), c.Param("lineId"), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    view,
	})
}

// RemoveItem handles DELETE /cart/items/:lineId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	view, err := h.cartService.RemoveItem(c.Request.Context(), h.getOrCreateSessionID(c), c.Param("lineId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    view,
	})
}

// RemoveMatchingItem handles DELETE /cart/items, removing the line matching
// the body
func (h *CartHandler) RemoveMatchingItem(c *gin.Context) {
	var req cart.RemoveMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	view, err := h.cartService.RemoveMatching(c.Request.Context(), h.getOrCreateSessionID(c), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    view,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), h.getOrCreateSessionID(c)); err != nil {
		respondError(c, h.logger, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// QuotePrice handles POST /cart/price
func (h *CartHandler) QuotePrice(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	quote, err := h.cartService.QuotePrice(c.Request.Context(), req.ProductID, req.VariantID, req.Customization)
	if err != nil {
		respondError(c, h.logger, err, "Failed to compute price")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": quote,
	})
}

// sessionID returns the cart session sent by the client, if any
func sessionID(c *gin.Context) string {
	if id := c.GetHeader(CartSessionHeader); id != "" {
		return id
	}
	if id, err := c.Cookie(cartSessionCookie); err == nil {
		return id
	}
	return ""
}

// getOrCreateSessionID returns the client's cart session, starting a new
// one when none was sent
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	id := sessionID(c)
	if _, err := uuid.Parse(id); err == nil {
		return id
	}

	id = uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartSessionCookie, id, int(h.cookieTTL.Seconds()), "/", "", h.secure, true)
	c.Header(CartSessionHeader, id)
	return id
}
