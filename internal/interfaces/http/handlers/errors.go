// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/checkout"
	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/atelier-textile/storefront-api/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// statusOf maps domain errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, product.ErrVariantNotFound),
		errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, customer.ErrAccountNotFound),
		errors.Is(err, customer.ErrProfileNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, product.ErrCategoryInUse):
		return http.StatusConflict
	case errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, product.ErrCategoryCycle),
		errors.Is(err, cart.ErrProductUnavailable),
		errors.Is(err, cart.ErrVariantNotFound),
		errors.Is(err, cart.ErrNotCustomizable),
		errors.Is(err, cart.ErrIncompleteCustomization),
		errors.Is(err, cart.ErrInvalidQuantity),
		checkout.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Server errors are logged with
// the request id.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error, message string) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"path":       c.FullPath(),
		}).Error(message)
		c.JSON(status, gin.H{
			"error":   message,
			"details": err.Error(),
		})
		return
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

func respondInvalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// uuidParam parses a path parameter, answering 400 when malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}
