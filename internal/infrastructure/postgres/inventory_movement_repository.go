package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, product_id, type, quantity, stock_before, stock_after, motive, order_id, ticket_id, sale_id, created_by, created_at`

// InventoryMovementRepo bitácora append-only sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Type, m.Quantity, m.StockBefore, m.StockAfter, m.Motive,
		nullable(m.OrderID), nullable(m.TicketID), nullable(m.SaleID), m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByProduct movimientos de un producto, más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return r.list(ctx, `SELECT `+movementColumns+` FROM inventory_movements
		WHERE product_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, productID, limit, offset)
}

// ListByTicket movimientos generados por el canje de un ticket.
func (r *InventoryMovementRepo) ListByTicket(ctx context.Context, ticketID string) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM inventory_movements
		WHERE ticket_id = $1 ORDER BY created_at, id`, ticketID)
}

// OutflowSince suma las salidas por producto desde since.
func (r *InventoryMovementRepo) OutflowSince(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, COALESCE(SUM(-quantity), 0) FROM inventory_movements
		WHERE type = $1 AND created_at >= $2 GROUP BY product_id`, entity.MovementTypeSalida, since)
	if err != nil {
		return nil, fmt.Errorf("sum outflow: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			productID string
			units     int
		)
		if err := rows.Scan(&productID, &units); err != nil {
			return nil, fmt.Errorf("scan outflow: %w", err)
		}
		out[productID] = units
	}
	return out, rows.Err()
}

func (r *InventoryMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var (
		m                         entity.InventoryMovement
		orderID, ticketID, saleID *string
	)
	err := row.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.StockBefore, &m.StockAfter,
		&m.Motive, &orderID, &ticketID, &saleID, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.OrderID, m.TicketID, m.SaleID = deref(orderID), deref(ticketID), deref(saleID)
	return &m, nil
}
