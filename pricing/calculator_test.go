package pricing

import (
	"fmt"
	"math"
	"testing"

	"leadcrm-backend/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func sampleRates() RateTable {
	return NewRateTable(
		[]models.PricingItem{{Name: "A", Price: 10}, {Name: "B", Price: 20}, {Name: "C", Price: 7}},
		[]models.PricingItem{{Name: "X", Price: 1.5}, {Name: "Y", Price: 0.5}},
	)
}

func TestCalculateWorkedExample(t *testing.T) {
	got := Calculate(Selection{
		Industries:      []string{"A", "B"},
		Areas:           []string{"X"},
		Channels:        []models.Channel{models.ChannelWhatsApp},
		LeadQty:         100,
		DiscountPercent: 10,
	}, sampleRates())

	assert.Equal(t, 15.0, got.BaseIndustryPrice)
	assert.Equal(t, 0.5, got.ChannelSurcharge)
	assert.Equal(t, 1.5, got.AreaMultiplier)
	assert.Equal(t, 23.25, got.PerLead)
	assert.Equal(t, 2325.0, got.Gross)
	assert.Equal(t, 232.5, got.DiscountAmount)
	assert.Equal(t, 2092.5, got.Net)
}

func TestCalculateEmptySelection(t *testing.T) {
	got := Calculate(Selection{LeadQty: 50}, sampleRates())

	assert.Equal(t, 0.0, got.BaseIndustryPrice)
	assert.Equal(t, 1.0, got.AreaMultiplier)
	assert.Equal(t, 0.0, got.PerLead)
	assert.Equal(t, 0.0, got.Net)
}

func TestCalculateIgnoresUnknownAndDuplicateNames(t *testing.T) {
	got := Calculate(Selection{
		Industries: []string{"A", "A", "Unknown"},
		Areas:      []string{"Nowhere"},
		Channels:   []models.Channel{models.ChannelEmail, models.ChannelWhatsApp, models.ChannelEmail},
		LeadQty:    10,
	}, sampleRates())

	assert.Equal(t, 10.0, got.BaseIndustryPrice)
	assert.Equal(t, 1.0, got.AreaMultiplier)
	assert.Equal(t, 0.8, got.ChannelSurcharge)
	assert.Equal(t, 10.8, got.PerLead)
	assert.Equal(t, 108.0, got.Net)
}

func TestCalculateFullDiscount(t *testing.T) {
	got := Calculate(Selection{
		Industries:      []string{"B"},
		LeadQty:         3,
		DiscountPercent: 100,
	}, sampleRates())

	assert.Equal(t, 60.0, got.Gross)
	assert.Equal(t, 0.0, got.Net)
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Abs(b))
}

func TestCalculateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	industryNames := []string{"A", "B", "C", "Unknown"}
	areaNames := []string{"X", "Y", "Nowhere"}

	pick := func(names []string, mask int) []string {
		var out []string
		for i, n := range names {
			if mask&(1<<i) != 0 {
				out = append(out, n)
			}
		}
		return out
	}

	properties.Property("net equals perLead * qty * (1 - discount/100) and is non-negative", prop.ForAll(
		func(indMask, areaMask, chMask, qty int, discount float64) bool {
			var channels []models.Channel
			if chMask&1 != 0 {
				channels = append(channels, models.ChannelWhatsApp)
			}
			if chMask&2 != 0 {
				channels = append(channels, models.ChannelEmail)
			}
			b := Calculate(Selection{
				Industries:      pick(industryNames, indMask),
				Areas:           pick(areaNames, areaMask),
				Channels:        channels,
				LeadQty:         qty,
				DiscountPercent: discount,
			}, sampleRates())

			want := b.PerLead * float64(qty) * (1 - discount/100)
			return closeTo(b.Net, want) && b.Net >= 0
		},
		gen.IntRange(0, 15),
		gen.IntRange(0, 7),
		gen.IntRange(0, 3),
		gen.IntRange(0, 100000),
		gen.Float64Range(0, 100),
	))

	properties.Property("zero discount leaves net equal to gross", prop.ForAll(
		func(indMask, qty int) bool {
			b := Calculate(Selection{
				Industries: pick(industryNames, indMask),
				Channels:   []models.Channel{models.ChannelWhatsApp},
				LeadQty:    qty,
			}, sampleRates())
			return b.Net == b.Gross && b.DiscountAmount == 0
		},
		gen.IntRange(0, 15),
		gen.IntRange(0, 100000),
	))

	properties.Property("no selection prices at zero per lead", prop.ForAll(
		func(qty int, discount float64) bool {
			b := Calculate(Selection{LeadQty: qty, DiscountPercent: discount}, sampleRates())
			return b.PerLead == 0 && b.Net == 0
		},
		gen.IntRange(0, 100000),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}

func ExampleCalculate() {
	b := Calculate(Selection{
		Industries:      []string{"A", "B"},
		Areas:           []string{"X"},
		Channels:        []models.Channel{models.ChannelWhatsApp},
		LeadQty:         100,
		DiscountPercent: 10,
	}, sampleRates())
	fmt.Printf("%.2f %.2f %.2f\n", b.PerLead, b.Gross, b.Net)
	// Output: 23.25 2325.00 2092.50
}
