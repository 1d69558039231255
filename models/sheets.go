package models

import "sort"

// Sheet names in the backing spreadsheet.
const (
	SheetClients         = "Clients"
	SheetUsers           = "Users"
	SheetInvoices        = "Invoices"
	SheetAuditLog        = "Audit_Log"
	SheetPayments        = "Payments"
	SheetIndustryPricing = "IndustryPricing"
	SheetAreaPricing     = "Area_Pricing"
)

// Every sheet keeps a header in row 1; data starts at row 2.
const FirstDataRow = 2

// Headers lists the header row written by cmd/create-schema. Column order is
// the on-disk contract and must match the *FromRow / ToRow functions.
var Headers = map[string][]interface{}{
	SheetClients: {
		"client_id", "companyName", "industry", "contactNumber", "whatsapp", "email",
		"location", "createdAt", "industries", "areas", "leadQty", "channels",
		"discountPercent", "perLeadPrice", "totalPrice", "status",
	},
	SheetUsers:           {"user_id", "name", "email", "username", "password_hash", "role", "status", "client_id"},
	SheetInvoices:        {"invoice_id", "client_id", "amount", "status", "createdAt"},
	SheetAuditLog:        {"id", "action", "companyName", "email", "createdAt", "client_id"},
	SheetPayments:        {"payment_id", "client_id", "amount", "status", "createdAt"},
	SheetIndustryPricing: {"industry_name", "price_per_lead"},
	SheetAreaPricing:     {"area_name", "multiplier"},
}

// SheetNames returns every known sheet in a stable order.
func SheetNames() []string {
	names := make([]string, 0, len(Headers))
	for name := range Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
