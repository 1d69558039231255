package handlers

import (
	"fmt"
	"net/http"
	"time"

	"leadcrm-backend/auth"
	"leadcrm-backend/models"
	"leadcrm-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ClientHandler handles HTTP requests for clients
type ClientHandler struct {
	clientService *service.ClientService
	exportService *service.ExportService
	log           *zap.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService, exportService *service.ExportService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		exportService: exportService,
		log:           log,
	}
}

// CreateClientRequest represents the request body for creating a client
type CreateClientRequest struct {
	CompanyName     string           `json:"companyName" binding:"required,min=2"`
	Industry        string           `json:"industry" binding:"required,min=2"`
	ContactNumber   string           `json:"contactNumber" binding:"required,min=5"`
	WhatsApp        string           `json:"whatsapp" binding:"required,min=5"`
	Email           string           `json:"email" binding:"required,email"`
	Location        string           `json:"location" binding:"required,min=2"`
	ContactPerson   string           `json:"contactPerson" binding:"required,min=2"`
	Username        string           `json:"username" binding:"required,min=3"`
	Password        string           `json:"password" binding:"required,min=6"`
	Industries      []string         `json:"industries"`
	Areas           []string         `json:"areas"`
	LeadQty         *int             `json:"leadQty" binding:"omitempty,min=1"`
	Channels        []models.Channel `json:"channels" binding:"omitempty,dive,oneof=whatsapp email"`
	DiscountPercent *float64         `json:"discountPercent" binding:"omitempty,min=0,max=100"`
	Status          string           `json:"status"`
	PerLeadPrice    *float64         `json:"perLeadPrice"`
	TotalPrice      *float64         `json:"totalPrice"`
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	leadQty := 100
	if req.LeadQty != nil {
		leadQty = *req.LeadQty
	}
	channels := req.Channels
	if channels == nil {
		channels = []models.Channel{models.ChannelWhatsApp}
	}
	var discount float64
	if req.DiscountPercent != nil {
		discount = *req.DiscountPercent
	}

	result, err := h.clientService.Create(c.Request.Context(), service.CreateClientRequest{
		CompanyName:     req.CompanyName,
		Industry:        req.Industry,
		ContactNumber:   req.ContactNumber,
		WhatsApp:        req.WhatsApp,
		Email:           req.Email,
		Location:        req.Location,
		ContactPerson:   req.ContactPerson,
		Username:        req.Username,
		Password:        req.Password,
		Industries:      req.Industries,
		Areas:           req.Areas,
		LeadQty:         leadQty,
		Channels:        channels,
		DiscountPercent: discount,
		Status:          req.Status,
		PerLeadPrice:    req.PerLeadPrice,
		TotalPrice:      req.TotalPrice,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to create client")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"clientId":       result.Client.ClientID,
		"clientUsername": result.ClientUsername,
		"perLeadPrice":   result.Client.PerLeadPrice,
		"totalPrice":     result.Client.TotalPrice,
	})
}

// ListClients handles GET /clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context(), service.ListClientsRequest{
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch clients")
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// GetClient handles GET /clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

// UpdateClientRequest represents the request body for updating a client.
// Omitted fields keep their stored values.
type UpdateClientRequest struct {
	ClientID      string   `json:"clientId"`
	CompanyName   *string  `json:"companyName" binding:"omitempty,min=2"`
	Industry      *string  `json:"industry" binding:"omitempty,min=2"`
	ContactNumber *string  `json:"contactNumber"`
	WhatsApp      *string  `json:"whatsapp"`
	Email         *string  `json:"email" binding:"omitempty,email"`
	Location      *string  `json:"location"`
	Industries    []string `json:"industries"`
	Areas         []string `json:"areas"`
	LeadQty       *int     `json:"leadQty" binding:"omitempty,min=0"`
	PerLeadPrice  *float64 `json:"perLeadPrice"`
	TotalPrice    *float64 `json:"totalPrice"`
}

// UpdateClient handles PUT /clients
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.ClientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing clientId"})
		return
	}

	_, err := h.clientService.Update(c.Request.Context(), service.UpdateClientRequest{
		ClientID:      req.ClientID,
		CompanyName:   req.CompanyName,
		Industry:      req.Industry,
		ContactNumber: req.ContactNumber,
		WhatsApp:      req.WhatsApp,
		Email:         req.Email,
		Location:      req.Location,
		Industries:    req.Industries,
		Areas:         req.Areas,
		LeadQty:       req.LeadQty,
		PerLeadPrice:  req.PerLeadPrice,
		TotalPrice:    req.TotalPrice,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	ClientID string `json:"clientId"`
	Status   string `json:"status"`
}

// UpdateStatus handles PATCH /clients/status
func (h *ClientHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClientID == "" || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing clientId or status"})
		return
	}

	if _, err := h.clientService.UpdateStatus(c.Request.Context(), service.UpdateStatusRequest{
		ClientID: req.ClientID,
		Status:   req.Status,
	}); err != nil {
		respondError(c, h.log, err, "Failed to update status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteClient handles DELETE /clients?clientId=
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Client ID required"})
		return
	}

	var deletedBy string
	if user, ok := auth.CurrentUser(c); ok {
		deletedBy = user.UserID
	}

	result, err := h.clientService.Delete(c.Request.Context(), service.DeleteClientRequest{
		ClientID:  clientID,
		DeletedBy: deletedBy,
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "archive": result.ArchivePath})
}

// ExportClients handles GET /clients/export
func (h *ClientHandler) ExportClients(c *gin.Context) {
	data, err := h.exportService.ClientsWorkbook(c.Request.Context(), service.ListClientsRequest{
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, h.log, err, "Failed to export clients")
		return
	}

	filename := fmt.Sprintf("clients-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
