package repository

import (
	"context"
	"fmt"

	"leadcrm-backend/models"
	"leadcrm-backend/rowstore"
)

// InvoiceRecord is an invoice together with its 1-based sheet row
type InvoiceRecord struct {
	Row     int
	Invoice models.Invoice
}

// InvoiceRepository handles row store operations for invoices
type InvoiceRepository struct {
	store rowstore.Store
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(store rowstore.Store) *InvoiceRepository {
	return &InvoiceRepository{store: store}
}

func (r *InvoiceRepository) Append(ctx context.Context, inv models.Invoice) error {
	if err := r.store.AppendRow(ctx, models.InvoicesAppendRange, inv.ToRow()); err != nil {
		return fmt.Errorf("append invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) List(ctx context.Context) ([]InvoiceRecord, error) {
	rows, err := r.store.ReadRange(ctx, models.InvoicesDataRange)
	if err != nil {
		return nil, fmt.Errorf("read invoices: %w", err)
	}

	records := make([]InvoiceRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, InvoiceRecord{Row: i + models.FirstDataRow, Invoice: models.InvoiceFromRow(row)})
	}
	return records, nil
}

// ForClient returns invoices whose client_id column equals clientID
func (r *InvoiceRepository) ForClient(ctx context.Context, clientID string) ([]InvoiceRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []InvoiceRecord
	for _, rec := range records {
		if clientID != "" && rec.Invoice.ClientID == clientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *InvoiceRepository) DeleteRows(ctx context.Context, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.store.DeleteRows(ctx, models.SheetInvoices, rows); err != nil {
		return fmt.Errorf("delete invoice rows: %w", err)
	}
	return nil
}

// AuditRecord is an audit entry together with its 1-based sheet row
type AuditRecord struct {
	Row   int
	Entry models.AuditEntry
}

// AuditRepository handles row store operations for the audit log
type AuditRepository struct {
	store rowstore.Store
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(store rowstore.Store) *AuditRepository {
	return &AuditRepository{store: store}
}

func (r *AuditRepository) Append(ctx context.Context, entry models.AuditEntry) error {
	if err := r.store.AppendRow(ctx, models.AuditAppendRange, entry.ToRow()); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// LinkedTo returns entries tied to a client by client_id or by email
func (r *AuditRepository) LinkedTo(ctx context.Context, clientID, email string) ([]AuditRecord, error) {
	rows, err := r.store.ReadRange(ctx, models.AuditDataRange)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	var out []AuditRecord
	for i, row := range rows {
		entry := models.AuditEntryFromRow(row)
		if linked(entry.ClientID, entry.Email, clientID, email) {
			out = append(out, AuditRecord{Row: i + models.FirstDataRow, Entry: entry})
		}
	}
	return out, nil
}

func (r *AuditRepository) DeleteRows(ctx context.Context, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.store.DeleteRows(ctx, models.SheetAuditLog, rows); err != nil {
		return fmt.Errorf("delete audit rows: %w", err)
	}
	return nil
}

// PaymentRepository reads the Payments sheet
type PaymentRepository struct {
	store rowstore.Store
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(store rowstore.Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	rows, err := r.store.ReadRange(ctx, models.PaymentsDataRange)
	if err != nil {
		return nil, fmt.Errorf("read payments: %w", err)
	}

	payments := make([]models.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, models.PaymentFromRow(row))
	}
	return payments, nil
}

// PricingRepository reads the pricing reference sheets
type PricingRepository struct {
	store rowstore.Store
}

// NewPricingRepository creates a new pricing repository
func NewPricingRepository(store rowstore.Store) *PricingRepository {
	return &PricingRepository{store: store}
}

// Industries returns industry rates. A missing price reads as 0.
func (r *PricingRepository) Industries(ctx context.Context) ([]models.PricingItem, error) {
	return r.read(ctx, models.IndustryPricingRange, 0)
}

// Areas returns area multipliers. A missing multiplier reads as 1.
func (r *PricingRepository) Areas(ctx context.Context) ([]models.PricingItem, error) {
	return r.read(ctx, models.AreaPricingRange, 1)
}

func (r *PricingRepository) read(ctx context.Context, rng string, def float64) ([]models.PricingItem, error) {
	rows, err := r.store.ReadRange(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	items := make([]models.PricingItem, 0, len(rows))
	for _, row := range rows {
		item := models.PricingItemFromRow(row, def)
		if item.Name == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
