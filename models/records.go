package models

import (
	"strings"

	"leadcrm-backend/rowstore"
)

// Invoice columns A..E.
const (
	InvoiceColID = iota
	InvoiceColClientID
	InvoiceColAmount
	InvoiceColStatus
	InvoiceColCreatedAt
	invoiceColumns
)

const (
	InvoicesDataRange     = "Invoices!A2:E"
	InvoicesAppendRange   = "Invoices!A:E"
	InvoicesClientIDRange = "Invoices!B2:B"

	InvoiceUnpaid = "unpaid"
	InvoicePaid   = "paid"
)

// Invoice represents a billing record for a client
type Invoice struct {
	InvoiceID string  `json:"invoice_id"`
	ClientID  string  `json:"client_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

func InvoiceFromRow(row []interface{}) Invoice {
	return Invoice{
		InvoiceID: rowstore.CellString(row, InvoiceColID, ""),
		ClientID:  rowstore.CellString(row, InvoiceColClientID, ""),
		Amount:    rowstore.CellFloat(row, InvoiceColAmount, 0),
		Status:    strings.ToLower(rowstore.CellString(row, InvoiceColStatus, "")),
		CreatedAt: rowstore.CellString(row, InvoiceColCreatedAt, ""),
	}
}

func (i Invoice) ToRow() []interface{} {
	row := make([]interface{}, invoiceColumns)
	row[InvoiceColID] = i.InvoiceID
	row[InvoiceColClientID] = i.ClientID
	row[InvoiceColAmount] = i.Amount
	row[InvoiceColStatus] = i.Status
	row[InvoiceColCreatedAt] = i.CreatedAt
	return row
}

// Payment shares the invoice layout: payment_id, client_id, amount, status, createdAt.
type Payment struct {
	PaymentID string  `json:"payment_id"`
	ClientID  string  `json:"client_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

const PaymentsDataRange = "Payments!A2:E"

func PaymentFromRow(row []interface{}) Payment {
	return Payment{
		PaymentID: rowstore.CellString(row, 0, ""),
		ClientID:  rowstore.CellString(row, 1, ""),
		Amount:    rowstore.CellFloat(row, 2, 0),
		Status:    strings.ToLower(rowstore.CellString(row, 3, "")),
		CreatedAt: rowstore.CellString(row, 4, ""),
	}
}

// Audit_Log columns A..F.
const (
	AuditColID = iota
	AuditColAction
	AuditColCompanyName
	AuditColEmail
	AuditColCreatedAt
	AuditColClientID
	auditColumns
)

const (
	AuditDataRange   = "Audit_Log!A2:F"
	AuditAppendRange = "Audit_Log!A:F"

	AuditClientCreated       = "CLIENT_CREATED"
	AuditClientUpdated       = "CLIENT_UPDATED"
	AuditClientStatusChanged = "CLIENT_STATUS_CHANGED"
)

// AuditEntry represents one line of the audit log
type AuditEntry struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	CreatedAt   string `json:"createdAt"`
	ClientID    string `json:"client_id,omitempty"`
}

func AuditEntryFromRow(row []interface{}) AuditEntry {
	return AuditEntry{
		ID:          rowstore.CellString(row, AuditColID, ""),
		Action:      rowstore.CellString(row, AuditColAction, ""),
		CompanyName: rowstore.CellString(row, AuditColCompanyName, ""),
		Email:       rowstore.CellString(row, AuditColEmail, ""),
		CreatedAt:   rowstore.CellString(row, AuditColCreatedAt, ""),
		ClientID:    rowstore.CellString(row, AuditColClientID, ""),
	}
}

func (a AuditEntry) ToRow() []interface{} {
	row := make([]interface{}, auditColumns)
	row[AuditColID] = a.ID
	row[AuditColAction] = a.Action
	row[AuditColCompanyName] = a.CompanyName
	row[AuditColEmail] = a.Email
	row[AuditColCreatedAt] = a.CreatedAt
	row[AuditColClientID] = a.ClientID
	return row
}

// PricingItem is one row of IndustryPricing or Area_Pricing.
type PricingItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

const (
	IndustryPricingRange = "IndustryPricing!A2:B"
	AreaPricingRange     = "Area_Pricing!A2:B"
)

// PricingItemFromRow maps a reference row; def is used when the price cell is
// missing (0 for industries, 1 for area multipliers).
func PricingItemFromRow(row []interface{}, def float64) PricingItem {
	return PricingItem{
		Name:  rowstore.CellString(row, 0, ""),
		Price: rowstore.CellFloat(row, 1, def),
	}
}
