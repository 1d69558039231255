package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadcrm-backend/models"
	"leadcrm-backend/repository"
)

// InvoiceService issues invoices for existing clients
type InvoiceService struct {
	invoiceRepo *repository.InvoiceRepository
	clientRepo  *repository.ClientRepository
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoices *repository.InvoiceRepository, clients *repository.ClientRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoices, clientRepo: clients, now: time.Now}
}

// CreateInvoiceRequest represents a request to invoice a client
type CreateInvoiceRequest struct {
	ClientID string
	Amount   float64
}

// Create appends an unpaid invoice numbered INV-<unix millis>
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(req.ClientID) == "" {
		verr.Add("client_id", "required")
	}
	if req.Amount < 0 {
		verr.Add("amount", "must be zero or greater")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	exists, err := s.clientRepo.Exists(ctx, req.ClientID)
	if err != nil {
		return nil, upstream("find client", err)
	}
	if !exists {
		return nil, ErrClientNotFound
	}

	now := s.now()
	inv := models.Invoice{
		InvoiceID: fmt.Sprintf("INV-%d", now.UnixMilli()),
		ClientID:  req.ClientID,
		Amount:    req.Amount,
		Status:    models.InvoiceUnpaid,
		CreatedAt: timestamp(now),
	}
	if err := s.invoiceRepo.Append(ctx, inv); err != nil {
		return nil, upstream("append invoice", err)
	}
	return &inv, nil
}
