package handlers

import (
	"net/http"

	"leadcrm-backend/models"
	"leadcrm-backend/pricing"
	"leadcrm-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PricingHandler serves the pricing reference tables and quotes
type PricingHandler struct {
	pricingService *service.PricingService
	log            *zap.Logger
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService *service.PricingService, log *zap.Logger) *PricingHandler {
	return &PricingHandler{pricingService: pricingService, log: log}
}

// Industries handles GET /pricing/industry
func (h *PricingHandler) Industries(c *gin.Context) {
	items, err := h.pricingService.Industries(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to load industry pricing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Areas handles GET /pricing/area
func (h *PricingHandler) Areas(c *gin.Context) {
	items, err := h.pricingService.Areas(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to load area pricing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// QuoteRequest is the pricing step of the client form
type QuoteRequest struct {
	Industries      []string         `json:"industries"`
	Areas           []string         `json:"areas"`
	Channels        []models.Channel `json:"channels" binding:"omitempty,dive,oneof=whatsapp email"`
	LeadQty         int              `json:"leadQty" binding:"min=0"`
	DiscountPercent float64          `json:"discountPercent" binding:"min=0,max=100"`
}

// Quote handles POST /pricing/quote
func (h *PricingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	b, err := h.pricingService.Quote(c.Request.Context(), pricing.Selection{
		Industries:      req.Industries,
		Areas:           req.Areas,
		Channels:        req.Channels,
		LeadQty:         req.LeadQty,
		DiscountPercent: req.DiscountPercent,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to price selection")
		return
	}
	c.JSON(http.StatusOK, b)
}
