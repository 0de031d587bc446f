// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InvoiceGenerator renders an order invoice as PDF
type InvoiceGenerator interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	orderService *order.Service
	invoices     InvoiceGenerator
	logger       logrus.FieldLogger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, invoices InvoiceGenerator, logger logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		invoices:     invoices,
		logger:       logger,
	}
}

// GenerateInvoice handles GET /admin/orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	// unpaid orders have nothing to invoice
	if o.Status == order.StatusPending || o.Status == order.StatusFailed {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("order is %s", o.Status),
		})
		return
	}

	pdfBuffer, err := h.invoices.GenerateInvoice(o)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate invoice")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=facture-%s.pdf", o.Reference()))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
