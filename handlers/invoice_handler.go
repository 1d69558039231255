package handlers

import (
	"net/http"

	"leadcrm-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InvoiceHandler issues invoices
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	log            *zap.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, log: log}
}

// CreateInvoiceRequest represents the request body for an invoice
type CreateInvoiceRequest struct {
	ClientID string  `json:"client_id" binding:"required"`
	Amount   float64 `json:"amount" binding:"min=0"`
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), service.CreateInvoiceRequest{
		ClientID: req.ClientID,
		Amount:   req.Amount,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to create invoice")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invoiceId": inv.InvoiceID})
}
