package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo pagos inmutables sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create inserta el pago; nunca se actualiza ni se borra.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, owner_type, owner_id, amount, method, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.OwnerType, p.OwnerID, p.Amount, p.Method, nullable(p.Reference), p.CreatedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListByOwner pagos del dueño en orden de registro.
func (r *PaymentRepo) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, owner_type, owner_id, amount, method, COALESCE(reference, ''), created_by, created_at
		FROM payments WHERE owner_type = $1 AND owner_id = $2 ORDER BY created_at, id`, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.OwnerType, &p.OwnerID, &p.Amount, &p.Method, &p.Reference, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
