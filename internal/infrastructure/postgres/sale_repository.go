package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, folio, client_id, total_amount, paid_amount, balance, payment_status, created_by, created_at`

// SaleRepo ventas de mostrador sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la venta y sus líneas.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `INSERT INTO sales (`+saleColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Folio, nullable(s.ClientID), s.TotalAmount, s.PaidAmount, s.Balance, s.PaymentStatus, s.CreatedBy, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrDuplicate, "folio duplicado", s.Folio)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	batch := &pgx.Batch{}
	for _, it := range s.Items {
		batch.Queue(`INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, subtotal) VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, s.ID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
	}
	if batch.Len() == 0 {
		return nil
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range s.Items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// NextFolio siguiente número de la secuencia de ventas.
func (r *SaleRepo) NextFolio(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('sale_folio_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sale folio: %w", err)
	}
	return n, nil
}

// GetByID venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate bloquea la venta (registro de pagos).
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// UpdateBalance guarda la conciliación de pagos.
func (r *SaleRepo) UpdateBalance(ctx context.Context, id string, total, paid, due decimal.Decimal, status string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales SET total_amount = $2, paid_amount = $3, balance = $4, payment_status = $5
		WHERE id = $1`, id, total, paid, due, status)
	if err != nil {
		return fmt.Errorf("update sale balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("venta", id)
	}
	return nil
}

func (r *SaleRepo) getOne(ctx context.Context, query, id string) (*entity.Sale, error) {
	var (
		s        entity.Sale
		clientID *string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Folio, &clientID, &s.TotalAmount, &s.PaidAmount,
		&s.Balance, &s.PaymentStatus, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.ClientID = deref(clientID)

	rows, err := r.q.Query(ctx, `SELECT id, sale_id, product_id, quantity, unit_price, subtotal
		FROM sale_items WHERE sale_id = $1 ORDER BY product_id`, s.ID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	return &s, rows.Err()
}
