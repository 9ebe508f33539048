package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// CatalogService handles the salon's service catalog
type CatalogService struct {
	serviceRepo    domain.ServiceRepository
	eventPublisher websocket.EventPublisher
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(serviceRepo domain.ServiceRepository) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CatalogService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CatalogService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// List returns every service ordered by name, then id
func (s *CatalogService) List(ctx context.Context) ([]*domain.Service, error) {
	var services []*domain.Service
	err := withRetry("list services", func() error {
		var err error
		services, err = s.serviceRepo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(services, func(i, j int) bool {
		if services[i].Name != services[j].Name {
			return services[i].Name < services[j].Name
		}
		return services[i].ID < services[j].ID
	})
	return services, nil
}

// Get returns a single service
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Service, error) {
	var service *domain.Service
	err := withRetry("get service", func() error {
		var err error
		service, err = s.serviceRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return service, nil
}

// Create adds a service to the catalog
func (s *CatalogService) Create(ctx context.Context, name string, price decimal.Decimal) (*domain.Service, error) {
	if err := domain.ValidateService(name, price); err != nil {
		return nil, err
	}

	service := &domain.Service{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(name),
		Price: domain.NormalizeAmount(price),
	}

	var created *domain.Service
	err := withRetry("insert service", func() error {
		var err error
		created, err = s.serviceRepo.Insert(ctx, service)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.ServiceCreated(created))
	return created, nil
}

// Update changes the name and/or price of a service
func (s *CatalogService) Update(ctx context.Context, id string, patch domain.ServicePatch) (*domain.Service, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		merged.Price = domain.NormalizeAmount(*patch.Price)
	}
	if err := domain.ValidateService(merged.Name, merged.Price); err != nil {
		return nil, err
	}

	var updated *domain.Service
	err = withRetry("update service", func() error {
		var err error
		updated, err = s.serviceRepo.Update(ctx, &merged)
		return err
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}

	s.publishEvent(websocket.ServiceUpdated(updated))
	return updated, nil
}

// Delete removes a service. Movements referencing it are left untouched.
// It returns false when the id is unknown.
func (s *CatalogService) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := withRetry("delete service", func() error {
		var err error
		affected, err = s.serviceRepo.Delete(ctx, id)
		return err
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	s.publishEvent(websocket.ServiceDeleted(map[string]string{"id": id}))
	return true, nil
}
