package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/shopspring/decimal"
	modernc "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ServiceRepository implements domain.ServiceRepository using SQLite
type ServiceRepository struct {
	db *sql.DB
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(db *DB) *ServiceRepository {
	return db.Services()
}

// List returns every catalog service ordered by name
func (r *ServiceRepository) List(ctx context.Context) ([]*domain.Service, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, price FROM services ORDER BY name, id`)
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
	row := r.db.QueryRowContext(ctx, `SELECT id, name, price FROM services WHERE id = ?`, id)
	s, err := scanService(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return s, nil
}

// Insert stores a new service under the id it already carries
func (r *ServiceRepository) Insert(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO services (id, name, price) VALUES (?, ?, ?) RETURNING id, name, price`,
		service.ID, service.Name, service.Price.StringFixed(2),
	)
	created, err := scanService(row)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, domain.ErrServiceExists
		}
		return nil, fmt.Errorf("insert service: %w", err)
	}
	return created, nil
}

// InsertBatch stores the services in a single transaction
func (r *ServiceRepository) InsertBatch(ctx context.Context, services []*domain.Service) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin service batch: %w", err)
	}
	defer tx.Rollback()

	for _, service := range services {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO services (id, name, price) VALUES (?, ?, ?)`,
			service.ID, service.Name, service.Price.StringFixed(2),
		)
		if err != nil {
			if isConstraintViolation(err) {
				return domain.ErrServiceExists
			}
			return fmt.Errorf("insert service %s: %w", service.ID, err)
		}
	}

	return tx.Commit()
}

// Update replaces the name and price of a service
func (r *ServiceRepository) Update(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE services
		 SET name = ?, price = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?
		 RETURNING id, name, price`,
		service.Name, service.Price.StringFixed(2), service.ID,
	)
	updated, err := scanService(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a service and returns the number of rows affected.
// Movements referencing it are left untouched.
func (r *ServiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete service: %w", err)
	}
	return res.RowsAffected()
}

func scanService(s scanner) (*domain.Service, error) {
	var (
		svc   domain.Service
		price string
	)
	if err := s.Scan(&svc.ID, &svc.Name, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan service: %w", err)
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("service %s: invalid price %q: %w", svc.ID, price, err)
	}
	svc.Price = parsed
	return &svc, nil
}

// isConstraintViolation checks the primary result code so it works with and
// without extended codes
func isConstraintViolation(err error) bool {
	var sqliteErr *modernc.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
