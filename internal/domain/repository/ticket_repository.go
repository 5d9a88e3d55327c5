package repository

import (
	"context"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// TicketRepository persistencia de tickets de retiro y sus líneas.
// Los Get devuelven (nil, nil) si el ticket no existe; los códigos llegan normalizados.
type TicketRepository interface {
	// Create inserta cabecera y líneas. ErrDuplicate si el código ya está en uso por un ticket vivo.
	Create(ctx context.Context, ticket *entity.WithdrawalTicket) error
	GetByCode(ctx context.Context, code string) (*entity.WithdrawalTicket, error)
	// GetByCodeForUpdate bloquea la cabecera del ticket.
	GetByCodeForUpdate(ctx context.Context, code string) (*entity.WithdrawalTicket, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.WithdrawalTicket, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	// UpdateStatus solo procede si el ticket sigue en Pendiente.
	UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time, validatedBy string) (ok bool, err error)
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error)
	ListCompleted(ctx context.Context) ([]entity.WithdrawalTicket, error)
}
