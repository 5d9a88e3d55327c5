package entity

import "time"

// Estados de un ticket de retiro.
const (
	TicketStatusPending   = "Pendiente"
	TicketStatusCompleted = "Completado"
	TicketStatusExpired   = "Expirado"
	TicketStatusCancelled = "Cancelado"
)

// WithdrawalTicket comprobante de reserva canjeable una sola vez por código antes de expirar.
type WithdrawalTicket struct {
	ID          string
	Code        string // 6 caracteres alfanuméricos en mayúsculas
	UserID      string // solicitante; es el actor de los movimientos al canjear
	Status      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	CompletedAt *time.Time
	ValidatedBy string
	Items       []TicketItem
}

// TicketItem línea del ticket. Product se resuelve en lecturas.
type TicketItem struct {
	ID        string
	TicketID  string
	ProductID string
	Quantity  int
	Product   *Product
}

// IsTerminal indica si el ticket ya no admite transiciones.
func (t *WithdrawalTicket) IsTerminal() bool {
	return t.Status != TicketStatusPending
}

// IsExpiredAt indica si el ticket ya venció en el instante dado.
func (t *WithdrawalTicket) IsExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
