// Package pricing computes lead package prices from the industry and area
// reference tables.
package pricing

import (
	"leadcrm-backend/models"

	"github.com/shopspring/decimal"
)

// Flat per-lead surcharges for each delivery channel.
const (
	WhatsAppSurcharge = 0.50
	EmailSurcharge    = 0.30
)

// Selection is what the salesperson picked for a package. Callers validate
// LeadQty >= 0 and 0 <= DiscountPercent <= 100.
type Selection struct {
	Industries      []string         `json:"industries"`
	Areas           []string         `json:"areas"`
	Channels        []models.Channel `json:"channels"`
	LeadQty         int              `json:"leadQty"`
	DiscountPercent float64          `json:"discountPercent"`
}

// RateTable holds the reference prices.
type RateTable struct {
	Industry map[string]float64
	Area     map[string]float64
}

// NewRateTable builds a table from reference rows. Later duplicates win.
func NewRateTable(industries, areas []models.PricingItem) RateTable {
	t := RateTable{
		Industry: make(map[string]float64, len(industries)),
		Area:     make(map[string]float64, len(areas)),
	}
	for _, it := range industries {
		t.Industry[it.Name] = it.Price
	}
	for _, it := range areas {
		t.Area[it.Name] = it.Price
	}
	return t
}

// Breakdown is the computed price of a package.
type Breakdown struct {
	BaseIndustryPrice float64 `json:"baseIndustryPrice"`
	AreaMultiplier    float64 `json:"areaMultiplier"`
	ChannelSurcharge  float64 `json:"channelSurcharge"`
	PerLead           float64 `json:"perLead"`
	Gross             float64 `json:"gross"`
	DiscountAmount    float64 `json:"discountAmount"`
	Net               float64 `json:"net"`
}

// Calculate prices a selection. Unknown industry or area names are ignored.
// With no priced industry the base is 0; with no priced area the multiplier
// is 1.
func Calculate(sel Selection, rates RateTable) Breakdown {
	base := mean(sel.Industries, rates.Industry, decimal.Zero)
	multiplier := mean(sel.Areas, rates.Area, decimal.NewFromInt(1))
	surcharge := channelSurcharge(sel.Channels)

	perLead := base.Add(surcharge).Mul(multiplier)
	gross := perLead.Mul(decimal.NewFromInt(int64(sel.LeadQty)))
	discount := gross.Mul(decimal.NewFromFloat(sel.DiscountPercent)).Div(decimal.NewFromInt(100))
	net := gross.Sub(discount)

	return Breakdown{
		BaseIndustryPrice: base.InexactFloat64(),
		AreaMultiplier:    multiplier.InexactFloat64(),
		ChannelSurcharge:  surcharge.InexactFloat64(),
		PerLead:           perLead.InexactFloat64(),
		Gross:             gross.InexactFloat64(),
		DiscountAmount:    discount.InexactFloat64(),
		Net:               net.InexactFloat64(),
	}
}

func mean(selected []string, rates map[string]float64, empty decimal.Decimal) decimal.Decimal {
	seen := make(map[string]struct{}, len(selected))
	sum := decimal.Zero
	n := int64(0)
	for _, name := range selected {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		rate, ok := rates[name]
		if !ok {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(rate))
		n++
	}
	if n == 0 {
		return empty
	}
	return sum.Div(decimal.NewFromInt(n))
}

func channelSurcharge(channels []models.Channel) decimal.Decimal {
	var whatsapp, email bool
	for _, ch := range channels {
		switch ch {
		case models.ChannelWhatsApp:
			whatsapp = true
		case models.ChannelEmail:
			email = true
		}
	}
	total := decimal.Zero
	if whatsapp {
		total = total.Add(decimal.NewFromFloat(WhatsAppSurcharge))
	}
	if email {
		total = total.Add(decimal.NewFromFloat(EmailSurcharge))
	}
	return total
}
