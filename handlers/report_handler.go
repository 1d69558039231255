package handlers

import (
	"net/http"

	"leadcrm-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportHandler serves dashboard counters
type ReportHandler struct {
	reportService *service.ReportService
	log           *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, log: log}
}

// Admin handles GET /reports/admin
func (h *ReportHandler) Admin(c *gin.Context) {
	r, err := h.reportService.Admin(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to build admin report")
		return
	}
	c.JSON(http.StatusOK, r)
}

// Sales handles GET /reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	r, err := h.reportService.Sales(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to build sales report")
		return
	}
	c.JSON(http.StatusOK, r)
}
