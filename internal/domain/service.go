package domain

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Service is a catalog entry of the salon
type Service struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ServicePatch holds the optional fields of a catalog update
type ServicePatch struct {
	Name  *string
	Price *decimal.Decimal
}

// ValidateService checks the invariants enforced on create and edit
func ValidateService(name string, price decimal.Decimal) error {
	verr := &ValidationError{}
	name = strings.TrimSpace(name)
	if name == "" {
		verr.Add("name", "Name is required")
	} else if len(name) > MaxServiceNameLength {
		verr.Add("name", "Name must be 255 characters or less")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		verr.Add("price", "Price must be positive")
	}
	return verr.OrNil()
}

// ServiceRepository is the persistence contract for the catalog
type ServiceRepository interface {
	List(ctx context.Context) ([]*Service, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	Insert(ctx context.Context, service *Service) (*Service, error)
	// InsertBatch stores every service atomically: on error none is stored
	InsertBatch(ctx context.Context, services []*Service) error
	Update(ctx context.Context, service *Service) (*Service, error)
	Delete(ctx context.Context, id string) (int64, error)
}
