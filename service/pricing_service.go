package service

import (
	"context"

	"leadcrm-backend/models"
	"leadcrm-backend/pricing"
	"leadcrm-backend/repository"
)

// PricingService exposes the reference tables and quotes packages
type PricingService struct {
	repo *repository.PricingRepository
}

// NewPricingService creates a new pricing service
func NewPricingService(repo *repository.PricingRepository) *PricingService {
	return &PricingService{repo: repo}
}

// Industries returns the IndustryPricing table
func (s *PricingService) Industries(ctx context.Context) ([]models.PricingItem, error) {
	items, err := s.repo.Industries(ctx)
	if err != nil {
		return nil, upstream("read industry pricing", err)
	}
	return items, nil
}

// Areas returns the Area_Pricing multipliers
func (s *PricingService) Areas(ctx context.Context) ([]models.PricingItem, error) {
	items, err := s.repo.Areas(ctx)
	if err != nil {
		return nil, upstream("read area pricing", err)
	}
	return items, nil
}

// Rates loads both reference tables
func (s *PricingService) Rates(ctx context.Context) (pricing.RateTable, error) {
	industries, err := s.Industries(ctx)
	if err != nil {
		return pricing.RateTable{}, err
	}
	areas, err := s.Areas(ctx)
	if err != nil {
		return pricing.RateTable{}, err
	}
	return pricing.NewRateTable(industries, areas), nil
}

// Quote prices a selection against the current reference tables
func (s *PricingService) Quote(ctx context.Context, sel pricing.Selection) (*pricing.Breakdown, error) {
	if err := validateSelection(sel); err != nil {
		return nil, err
	}

	rates, err := s.Rates(ctx)
	if err != nil {
		return nil, err
	}
	b := pricing.Calculate(sel, rates)
	return &b, nil
}

func validateSelection(sel pricing.Selection) error {
	verr := &ValidationError{}
	if sel.LeadQty < 0 {
		verr.Add("leadQty", "must be zero or greater")
	}
	if sel.DiscountPercent < 0 || sel.DiscountPercent > 100 {
		verr.Add("discountPercent", "must be between 0 and 100")
	}
	for _, ch := range sel.Channels {
		if ch != models.ChannelWhatsApp && ch != models.ChannelEmail {
			verr.Add("channels", "unknown channel "+string(ch))
			break
		}
	}
	return verr.OrNil()
}
