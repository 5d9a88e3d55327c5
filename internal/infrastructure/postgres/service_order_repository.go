package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

const orderColumns = `id, folio, client_id, equipment_id, technician_id, status, priority, diagnosis,
	client_approved, diagnosis_fee, repair_cost, total_amount, paid_amount, balance, payment_status,
	created_by, created_at, updated_at, delivered_at`

// ServiceOrderRepo órdenes de servicio e historial sobre PostgreSQL (usable con pool o tx).
type ServiceOrderRepo struct {
	q Querier
}

// NewServiceOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{q: q}
}

// Create persiste la orden recién recibida.
func (r *ServiceOrderRepo) Create(ctx context.Context, o *entity.ServiceOrder) error {
	_, err := r.q.Exec(ctx, `INSERT INTO service_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		o.ID, o.Folio, o.ClientID, o.EquipmentID, nullable(o.TechnicianID), o.Status, o.Priority, o.Diagnosis,
		o.ClientApproved, o.DiagnosisFee, o.RepairCost, o.TotalAmount, o.PaidAmount, o.Balance, o.PaymentStatus,
		nullable(o.CreatedBy), o.CreatedAt, o.UpdatedAt, o.DeliveredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrDuplicate, "folio duplicado", o.Folio)
		}
		return fmt.Errorf("insert service order: %w", err)
	}
	return nil
}

// NextFolio siguiente número de la secuencia de folios.
func (r *ServiceOrderRepo) NextFolio(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('service_order_folio_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next order folio: %w", err)
	}
	return n, nil
}

// GetByID obtiene una orden por ID.
func (r *ServiceOrderRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea la fila.
func (r *ServiceOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1 FOR UPDATE`, id)
}

// UpdateStatus compare-and-swap: solo cambia si el estado actual sigue siendo from.
func (r *ServiceOrderRepo) UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus, deliveredAt *time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE service_orders SET status = $3, delivered_at = COALESCE($4, delivered_at), updated_at = now()
		WHERE id = $1 AND status = $2`, id, from, to, deliveredAt)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateDiagnosis guarda diagnóstico y costo de reparación.
func (r *ServiceOrderRepo) UpdateDiagnosis(ctx context.Context, id, diagnosis string, repairCost decimal.Decimal) error {
	return r.update(ctx, "diagnosis", `UPDATE service_orders SET diagnosis = $2, repair_cost = $3, updated_at = now() WHERE id = $1`,
		id, diagnosis, repairCost)
}

// UpdateApproval guarda la decisión del cliente.
func (r *ServiceOrderRepo) UpdateApproval(ctx context.Context, id string, approved bool) error {
	return r.update(ctx, "approval", `UPDATE service_orders SET client_approved = $2, updated_at = now() WHERE id = $1`,
		id, approved)
}

// UpdateBalance guarda la conciliación de pagos.
func (r *ServiceOrderRepo) UpdateBalance(ctx context.Context, id string, total, paid, due decimal.Decimal, status string) error {
	return r.update(ctx, "balance", `
		UPDATE service_orders SET total_amount = $2, paid_amount = $3, balance = $4, payment_status = $5, updated_at = now()
		WHERE id = $1`, id, total, paid, due, status)
}

// AddHistory agrega una transición al historial.
func (r *ServiceOrderRepo) AddHistory(ctx context.Context, h *entity.OrderHistory) error {
	var from *string
	if h.From != "" {
		s := string(h.From)
		from = &s
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_history (id, order_id, from_status, to_status, actor_id, automatic, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.OrderID, from, h.To, nullable(h.ActorID), h.Automatic, h.Notes, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order history: %w", err)
	}
	return nil
}

// ListHistory historial en orden cronológico.
func (r *ServiceOrderRepo) ListHistory(ctx context.Context, orderID string) ([]*entity.OrderHistory, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, from_status, to_status, actor_id, automatic, notes, created_at
		FROM order_history WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderHistory
	for rows.Next() {
		var (
			h             entity.OrderHistory
			from, actorID *string
			to            string
		)
		if err := rows.Scan(&h.ID, &h.OrderID, &from, &to, &actorID, &h.Automatic, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order history: %w", err)
		}
		h.From = entity.OrderStatus(deref(from))
		h.To = entity.OrderStatus(to)
		h.ActorID = deref(actorID)
		list = append(list, &h)
	}
	return list, rows.Err()
}

func (r *ServiceOrderRepo) update(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("orden", fmt.Sprint(args[0]))
	}
	return nil
}

func (r *ServiceOrderRepo) getOne(ctx context.Context, query string, id string) (*entity.ServiceOrder, error) {
	var (
		o                       entity.ServiceOrder
		status                  string
		technicianID, createdBy *string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Folio, &o.ClientID, &o.EquipmentID, &technicianID, &status, &o.Priority, &o.Diagnosis,
		&o.ClientApproved, &o.DiagnosisFee, &o.RepairCost, &o.TotalAmount, &o.PaidAmount, &o.Balance, &o.PaymentStatus,
		&createdBy, &o.CreatedAt, &o.UpdatedAt, &o.DeliveredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service order: %w", err)
	}
	o.Status = entity.OrderStatus(status)
	o.TechnicianID = deref(technicianID)
	o.CreatedBy = deref(createdBy)
	return &o, nil
}
