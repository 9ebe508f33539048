package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultServices is the starter catalog of a new salon
func DefaultServices() []*domain.Service {
	entries := []struct {
		id, name, price string
	}{
		// nails
		{"1", "Pé e mão (simples)", "35.00"},
		{"2", "Pé e mão (design)", "50.00"},
		{"3", "Esmaltação em gel", "25.00"},
		{"4", "Unha postiça", "45.00"},
		{"5", "Unha postiça + pé", "60.00"},
		{"6", "Spa dos pés", "40.00"},
		// hair
		{"7", "Escova", "30.00"},
		{"8", "Coloração", "120.00"},
		{"9", "Progressiva", "180.00"},
		{"10", "Corte", "40.00"},
		{"11", "Corte (finalização)", "45.00"},
		{"12", "Corte (sem finalização)", "35.00"},
		{"13", "Hidratação", "50.00"},
		{"14", "Reconstração", "60.00"},
		{"15", "Nutrição", "55.00"},
		// aesthetics
		{"16", "Buço", "15.00"},
		{"17", "Cílios look francês", "80.00"},
	}

	services := make([]*domain.Service, len(entries))
	for i, e := range entries {
		services[i] = &domain.Service{ID: e.id, Name: e.name, Price: decimal.RequireFromString(e.price)}
	}
	return services
}

// Seed inserts the given services when the catalog is empty and returns how
// many were written. A catalog with any service is left alone. The services
// are written in one batch, so a failed seed leaves the catalog empty and the
// next start tries again.
func (s *CatalogService) Seed(ctx context.Context, services []*domain.Service) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, svc := range services {
		if err := domain.ValidateService(svc.Name, svc.Price); err != nil {
			return 0, err
		}
	}
	err = withRetry("seed catalog", func() error {
		return s.serviceRepo.InsertBatch(ctx, services)
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int("count", len(services)).Msg("Service catalog seeded")
	return len(services), nil
}
