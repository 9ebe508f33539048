package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Fixed width keeps the text column sortable
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// MovementRepository implements domain.MovementRepository using SQLite
type MovementRepository struct {
	db *sql.DB
}

// NewMovementRepository creates a new MovementRepository
func NewMovementRepository(db *DB) *MovementRepository {
	return db.Movements()
}

const movementColumns = `id, kind, category, service_ref, amount, description, payment_method, created_at`

// List returns every movement, newest first
func (r *MovementRepository) List(ctx context.Context) ([]*domain.Movement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+movementColumns+` FROM movements ORDER BY created_at DESC, id ASC`)
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
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movements (kind, category, service_ref, amount, description, payment_method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(movement.Kind),
		movement.Category,
		nullString(movement.ServiceRef),
		movement.Amount.StringFixed(2),
		movement.Description,
		string(movement.PaymentMethod),
		movement.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}

	created := movement.Clone()
	created.ID = id
	return created, nil
}

// Update replaces the content fields of a movement. The timestamp is kept.
func (r *MovementRepository) Update(ctx context.Context, movement *domain.Movement) (*domain.Movement, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE movements
		 SET kind = ?, category = ?, service_ref = ?, amount = ?, description = ?, payment_method = ?
		 WHERE id = ?
		 RETURNING `+movementColumns,
		string(movement.Kind),
		movement.Category,
		nullString(movement.ServiceRef),
		movement.Amount.StringFixed(2),
		movement.Description,
		string(movement.PaymentMethod),
		movement.ID,
	)

	updated, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a movement and returns the number of rows affected
func (r *MovementRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete movement: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovement(s scanner) (*domain.Movement, error) {
	var (
		m             domain.Movement
		kind          string
		serviceRef    sql.NullString
		amount        string
		paymentMethod string
		createdAt     string
	)
	if err := s.Scan(&m.ID, &kind, &m.Category, &serviceRef, &amount, &m.Description, &paymentMethod, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan movement: %w", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("movement %d: invalid amount %q: %w", m.ID, amount, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("movement %d: invalid timestamp %q: %w", m.ID, createdAt, err)
	}

	m.Kind = domain.MovementKind(kind)
	m.Amount = parsed
	m.PaymentMethod = domain.PaymentMethod(paymentMethod)
	m.Timestamp = ts
	if serviceRef.Valid {
		ref := serviceRef.String
		m.ServiceRef = &ref
	}
	return &m, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
