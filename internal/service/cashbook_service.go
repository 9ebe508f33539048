package service

import (
	"context"
	"errors"

	"github.com/salao-caixa/caixa-backend/internal/domain"
)

// Ensure CashBookService implements domain.CashBook
var _ domain.CashBook = (*CashBookService)(nil)

// CashBookService exposes the ledger, aggregation and report operations to
// the transport layer
type CashBookService struct {
	ledger  *LedgerService
	catalog *CatalogService
}

// NewCashBookService creates a new CashBookService
func NewCashBookService(ledger *LedgerService, catalog *CatalogService) *CashBookService {
	return &CashBookService{
		ledger:  ledger,
		catalog: catalog,
	}
}

// GetLedger returns the movements matching the filter, newest first
func (s *CashBookService) GetLedger(ctx context.Context, filter *domain.MovementFilter) ([]*domain.Movement, error) {
	return s.ledger.List(filter), nil
}

// GetLedgerPage returns one page of the filtered ledger
func (s *CashBookService) GetLedgerPage(ctx context.Context, filter *domain.MovementFilter, page, pageSize int) (*domain.Page, error) {
	movements, err := s.GetLedger(ctx, nil)
	if err != nil {
		return nil, err
	}

	paginator := NewPaginator()
	if filter != nil {
		paginator.SetFilter(*filter)
	}
	paginator.SetPageSize(pageSize)
	paginator.SetPage(page)
	return paginator.View(movements), nil
}

// GetMovement returns a single movement
func (s *CashBookService) GetMovement(ctx context.Context, id int64) (*domain.Movement, error) {
	return s.ledger.Get(id)
}

// RegisterMovement records a new movement. When a catalog service is
// referenced, its name and price fill an empty category and an omitted
// amount. An explicit amount is always validated as given.
func (s *CashBookService) RegisterMovement(ctx context.Context, input domain.MovementInput) (*domain.Movement, error) {
	if input.ServiceRef != nil && *input.ServiceRef != "" {
		svc, err := s.lookupService(ctx, *input.ServiceRef)
		if err != nil {
			return nil, err
		}
		if input.Category == "" {
			input.Category = svc.Name
		}
		if input.Amount == nil {
			price := svc.Price
			input.Amount = &price
		}
	}
	return s.ledger.Add(ctx, input)
}

// EditMovement applies a partial update to a movement
func (s *CashBookService) EditMovement(ctx context.Context, id int64, patch domain.MovementPatch) (*domain.Movement, error) {
	// unknown ids take precedence over a bad service reference
	if _, err := s.ledger.Get(id); err != nil {
		return nil, err
	}
	if patch.ServiceRef != nil && *patch.ServiceRef != "" {
		if _, err := s.lookupService(ctx, *patch.ServiceRef); err != nil {
			return nil, err
		}
	}
	return s.ledger.Update(ctx, id, patch)
}

// RemoveMovement deletes a movement; false means the id was unknown
func (s *CashBookService) RemoveMovement(ctx context.Context, id int64) (bool, error) {
	return s.ledger.Delete(ctx, id)
}

// GetSummary aggregates the movements inside the range
func (s *CashBookService) GetSummary(ctx context.Context, dateRange *domain.DateRange) (*domain.Summary, error) {
	all := s.ledger.Snapshot()
	return Summarize(FilterByRange(all, dateRange), all, s.ledger.Now()), nil
}

// GetReport returns the flat report rows of the movements inside the range
func (s *CashBookService) GetReport(ctx context.Context, dateRange *domain.DateRange) ([]*domain.ReportRow, error) {
	movements := FilterByRange(s.ledger.Snapshot(), dateRange)
	services, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return AssembleReport(movements, services), nil
}

// GetDashboard returns the home screen metrics
func (s *CashBookService) GetDashboard(ctx context.Context) (*domain.DashboardMetrics, error) {
	return CalculateDashboard(s.ledger.Snapshot(), s.ledger.Now()), nil
}

func (s *CashBookService) lookupService(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.catalog.Get(ctx, id)
	if errors.Is(err, domain.ErrServiceNotFound) {
		verr := &domain.ValidationError{}
		verr.Add("serviceRef", "Service not found")
		return nil, verr
	}
	return svc, err
}
