package ports

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Tipos de evento emitidos tras un commit exitoso.
const (
	EventTicketCreated     = "ticket.created"
	EventTicketValidated   = "ticket.validated"
	EventTicketCancelled   = "ticket.cancelled"
	EventTicketExpired     = "ticket.expired"
	EventOrderTransitioned = "order.transitioned"
	EventPaymentRecorded   = "payment.recorded"
	EventSaleCreated       = "sale.created"
	EventStockLow          = "stock.low"
	EventStockMoved        = "stock.moved"
)

// Event notificación fire-and-forget.
type Event struct {
	Type       string         `json:"type"`
	ResourceID string         `json:"resource_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Notifier sumidero de notificaciones. Un error aquí nunca revierte la operación que lo originó.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NopNotifier descarta todo.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) error { return nil }

// Publish entrega el evento al sumidero; un fallo solo queda en el log.
func Publish(ctx context.Context, n Notifier, log zerolog.Logger, event Event) {
	if n == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := n.Notify(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", event.Type).Str("resource_id", event.ResourceID).Msg("notificación no entregada")
	}
}
