package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salao-caixa/caixa-backend/internal/domain"
)

// MovementRepository implements domain.MovementRepository using PostgreSQL
type MovementRepository struct {
	pool *pgxpool.Pool
}

// NewMovementRepository creates a new MovementRepository
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return &MovementRepository{pool: pool}
}

const movementColumns = `id, kind, category, service_ref, amount, description, payment_method, created_at`

// List returns every movement, newest first
func (r *MovementRepository) List(ctx context.Context) ([]*domain.Movement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+movementColumns+` FROM movements ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// Insert stores a new movement and returns it with the assigned id
func (r *MovementRepository) Insert(ctx context.Context, movement *domain.Movement) (*domain.Movement, error) {
	amount, err := decimalToPgNumeric(movement.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO movements (kind, category, service_ref, amount, description, payment_method, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+movementColumns,
		string(movement.Kind),
		movement.Category,
		ptrToPgText(movement.ServiceRef),
		amount,
		movement.Description,
		string(movement.PaymentMethod),
		pgtype.Timestamptz{Time: movement.Timestamp, Valid: true},
	)
	created, err := scanMovement(row)
	if err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}
	return created, nil
}

// Update replaces the content fields of a movement. The timestamp is kept.
func (r *MovementRepository) Update(ctx context.Context, movement *domain.Movement) (*domain.Movement, error) {
	amount, err := decimalToPgNumeric(movement.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE movements
		 SET kind = $2, category = $3, service_ref = $4, amount = $5, description = $6, payment_method = $7
		 WHERE id = $1
		 RETURNING `+movementColumns,
		movement.ID,
		string(movement.Kind),
		movement.Category,
		ptrToPgText(movement.ServiceRef),
		amount,
		movement.Description,
		string(movement.PaymentMethod),
	)
	updated, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a movement and returns the number of rows affected
func (r *MovementRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete movement: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	var (
		m             domain.Movement
		kind          string
		serviceRef    pgtype.Text
		amount        pgtype.Numeric
		paymentMethod string
		createdAt     time.Time
	)
	if err := row.Scan(&m.ID, &kind, &m.Category, &serviceRef, &amount, &m.Description, &paymentMethod, &createdAt); err != nil {
		return nil, err
	}

	m.Kind = domain.MovementKind(kind)
	m.ServiceRef = pgTextToPtr(serviceRef)
	m.Amount = pgNumericToDecimal(amount)
	m.PaymentMethod = domain.PaymentMethod(paymentMethod)
	m.Timestamp = createdAt
	return &m, nil
}
