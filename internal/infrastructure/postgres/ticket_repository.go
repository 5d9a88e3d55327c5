package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

const ticketColumns = `id, code, user_id, status, created_at, expires_at, completed_at, validated_by`

// TicketRepo tickets de retiro y sus líneas sobre PostgreSQL (usable con pool o tx).
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

// Create inserta cabecera y líneas. La cabecera va primero para que una colisión
// de código falle antes de escribir líneas.
func (r *TicketRepo) Create(ctx context.Context, t *entity.WithdrawalTicket) error {
	_, err := r.q.Exec(ctx, `INSERT INTO withdrawal_tickets (`+ticketColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Code, t.UserID, t.Status, t.CreatedAt, t.ExpiresAt, t.CompletedAt, nullable(t.ValidatedBy))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrDuplicate, "código de ticket en uso", t.Code)
		}
		return fmt.Errorf("insert ticket: %w", err)
	}

	batch := &pgx.Batch{}
	for _, it := range t.Items {
		batch.Queue(`INSERT INTO ticket_items (id, ticket_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			it.ID, t.ID, it.ProductID, it.Quantity)
	}
	if batch.Len() == 0 {
		return nil
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range t.Items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert ticket item: %w", err)
		}
	}
	return nil
}

// GetByCode ticket por código normalizado.
func (r *TicketRepo) GetByCode(ctx context.Context, code string) (*entity.WithdrawalTicket, error) {
	return r.getOne(ctx, `SELECT `+ticketColumns+` FROM withdrawal_tickets WHERE code = $1`, code)
}

// GetByCodeForUpdate bloquea la cabecera del ticket.
func (r *TicketRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.WithdrawalTicket, error) {
	return r.getOne(ctx, `SELECT `+ticketColumns+` FROM withdrawal_tickets WHERE code = $1 FOR UPDATE`, code)
}

// GetByIDForUpdate bloquea la cabecera del ticket por ID.
func (r *TicketRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.WithdrawalTicket, error) {
	return r.getOne(ctx, `SELECT `+ticketColumns+` FROM withdrawal_tickets WHERE id = $1 FOR UPDATE`, id)
}

// CodeInUse indica si ya existe un ticket con ese código.
func (r *TicketRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM withdrawal_tickets WHERE code = $1)`, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check ticket code: %w", err)
	}
	return exists, nil
}

// UpdateStatus cierra el ticket solo si sigue Pendiente.
func (r *TicketRepo) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time, validatedBy string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE withdrawal_tickets SET status = $2, completed_at = $3, validated_by = $4
		WHERE id = $1 AND status = $5`,
		id, status, completedAt, nullable(validatedBy), entity.TicketStatusPending)
	if err != nil {
		return false, fmt.Errorf("update ticket status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListExpiredPending IDs de tickets Pendiente vencidos, los más antiguos primero.
func (r *TicketRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q.Query(ctx, `
		SELECT id FROM withdrawal_tickets
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at LIMIT $3`, entity.TicketStatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired tickets: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ListCompleted tickets Completado con sus líneas.
func (r *TicketRepo) ListCompleted(ctx context.Context) ([]entity.WithdrawalTicket, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ticketColumns+` FROM withdrawal_tickets
		WHERE status = $1 ORDER BY created_at`, entity.TicketStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("list completed tickets: %w", err)
	}
	var list []entity.WithdrawalTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		list = append(list, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, len(list))
	idx := make(map[string]int, len(list))
	for i, t := range list {
		ids[i] = t.ID
		idx[t.ID] = i
	}
	items, err := r.items(ctx, `WHERE ticket_id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		i := idx[it.TicketID]
		list[i].Items = append(list[i].Items, it)
	}
	return list, nil
}

func (r *TicketRepo) getOne(ctx context.Context, query string, arg any) (*entity.WithdrawalTicket, error) {
	t, err := scanTicket(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	t.Items, err = r.items(ctx, `WHERE ticket_id = $1`, t.ID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TicketRepo) items(ctx context.Context, where string, arg any) ([]entity.TicketItem, error) {
	rows, err := r.q.Query(ctx, `SELECT id, ticket_id, product_id, quantity FROM ticket_items `+where+` ORDER BY product_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list ticket items: %w", err)
	}
	defer rows.Close()
	var list []entity.TicketItem
	for rows.Next() {
		var it entity.TicketItem
		if err := rows.Scan(&it.ID, &it.TicketID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan ticket item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func scanTicket(row pgx.Row) (*entity.WithdrawalTicket, error) {
	var (
		t           entity.WithdrawalTicket
		validatedBy *string
	)
	err := row.Scan(&t.ID, &t.Code, &t.UserID, &t.Status, &t.CreatedAt, &t.ExpiresAt, &t.CompletedAt, &validatedBy)
	if err != nil {
		return nil, err
	}
	t.ValidatedBy = deref(validatedBy)
	return &t, nil
}
