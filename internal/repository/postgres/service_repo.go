package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salao-caixa/caixa-backend/internal/domain"
)

// ServiceRepository implements domain.ServiceRepository using PostgreSQL
type ServiceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

// List returns every catalog service ordered by name
func (r *ServiceRepository) List(ctx context.Context) ([]*domain.Service, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price FROM services ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetByID retrieves a service by its id
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	s, err := scanService(r.pool.QueryRow(ctx, `SELECT id, name, price FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return s, nil
}

// Insert stores a new service under the id it already carries
func (r *ServiceRepository) Insert(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	price, err := decimalToPgNumeric(service.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	created, err := scanService(r.pool.QueryRow(ctx,
		`INSERT INTO services (id, name, price) VALUES ($1, $2, $3) RETURNING id, name, price`,
		service.ID, service.Name, price,
	))
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrServiceExists
		}
		return nil, fmt.Errorf("insert service: %w", err)
	}
	return created, nil
}

// InsertBatch stores the services in a single transaction
func (r *ServiceRepository) InsertBatch(ctx context.Context, services []*domain.Service) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, service := range services {
		price, err := decimalToPgNumeric(service.Price)
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		_, err = tx.Exec(ctx, `INSERT INTO services (id, name, price) VALUES ($1, $2, $3)`,
			service.ID, service.Name, price)
		if err != nil {
			if isPgUniqueViolation(err) {
				return domain.ErrServiceExists
			}
			return fmt.Errorf("insert service %s: %w", service.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// Update replaces the name and price of a service
func (r *ServiceRepository) Update(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	price, err := decimalToPgNumeric(service.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	updated, err := scanService(r.pool.QueryRow(ctx,
		`UPDATE services SET name = $2, price = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, name, price`,
		service.ID, service.Name, price,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a service and returns the number of rows affected.
// Movements referencing it are left untouched.
func (r *ServiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete service: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var (
		s     domain.Service
		price pgtype.Numeric
	)
	if err := row.Scan(&s.ID, &s.Name, &price); err != nil {
		return nil, err
	}
	s.Price = pgNumericToDecimal(price)
	return &s, nil
}
