package service

import (
	"context"

	"leadcrm-backend/models"
	"leadcrm-backend/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportService aggregates dashboard counters. Every call scans the sheets.
type ReportService struct {
	clientRepo  *repository.ClientRepository
	invoiceRepo *repository.InvoiceRepository
	paymentRepo *repository.PaymentRepository
	log         *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(clients *repository.ClientRepository, invoices *repository.InvoiceRepository, payments *repository.PaymentRepository, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{clientRepo: clients, invoiceRepo: invoices, paymentRepo: payments, log: log}
}

// AdminReport is the admin dashboard
type AdminReport struct {
	TotalClients        int `json:"totalClients"`
	RegisteredCustomers int `json:"registeredCustomers"`
	ActiveClients       int `json:"activeClients"`
	DraftClients        int `json:"draftClients"`
	InactiveClients     int `json:"inactiveClients"`
	PaidCustomers       int `json:"paidCustomers"`
	PendingPayments     int `json:"pendingPayments"`
}

// SalesReport is the sales dashboard
type SalesReport struct {
	TotalLeads    int     `json:"totalLeads"`
	Revenue       float64 `json:"revenue"`
	PipelineValue float64 `json:"pipelineValue"`
	Meetings      int     `json:"meetings"`
	Conversions   int     `json:"conversions"`
}

func (s *ReportService) clients(ctx context.Context) ([]models.Client, error) {
	records, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, upstream("list clients", err)
	}
	out := make([]models.Client, 0, len(records))
	for _, rec := range records {
		if rec.Client.ClientID == "" && rec.Client.CompanyName == "" {
			continue
		}
		out = append(out, rec.Client)
	}
	return out, nil
}

// Admin counts clients by status and payments by state. A missing or
// unreadable Payments sheet counts as empty.
func (s *ReportService) Admin(ctx context.Context) (*AdminReport, error) {
	clients, err := s.clients(ctx)
	if err != nil {
		return nil, err
	}

	r := &AdminReport{TotalClients: len(clients), RegisteredCustomers: len(clients)}
	for _, c := range clients {
		switch c.Status {
		case models.ClientActive:
			r.ActiveClients++
		case models.ClientDraft:
			r.DraftClients++
		case models.ClientInactive:
			r.InactiveClients++
		}
	}

	payments, err := s.paymentRepo.List(ctx)
	if err != nil {
		s.log.Warn("Payments unavailable, reporting zero", zap.Error(err))
	}
	for _, p := range payments {
		switch p.Status {
		case "paid":
			r.PaidCustomers++
		case "pending":
			r.PendingPayments++
		}
	}
	return r, nil
}

// Sales sums active pipeline and paid invoice revenue. A missing or
// unreadable Invoices sheet counts as no revenue.
func (s *ReportService) Sales(ctx context.Context) (*SalesReport, error) {
	clients, err := s.clients(ctx)
	if err != nil {
		return nil, err
	}

	r := &SalesReport{}
	pipeline := decimal.Zero
	for _, c := range clients {
		if c.Status != models.ClientActive {
			continue
		}
		r.TotalLeads += c.LeadQty
		pipeline = pipeline.Add(decimal.NewFromFloat(c.TotalPrice))
	}
	r.PipelineValue = pipeline.InexactFloat64()

	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		s.log.Warn("Invoices unavailable, reporting zero revenue", zap.Error(err))
	}
	revenue := decimal.Zero
	for _, inv := range invoices {
		if inv.Invoice.Status == models.InvoicePaid {
			revenue = revenue.Add(decimal.NewFromFloat(inv.Invoice.Amount))
		}
	}
	r.Revenue = revenue.InexactFloat64()
	return r, nil
}
