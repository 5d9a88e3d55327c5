package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dueños posibles de un pago.
const (
	PaymentOwnerOrder = "order"
	PaymentOwnerSale  = "sale"
)

// Estados de pago derivados de la suma de pagos.
const (
	PaymentStatusPending = "Pendiente"
	PaymentStatusPartial = "Parcial"
	PaymentStatusPaid    = "Pagado"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash     = "Efectivo"
	PaymentMethodCard     = "Tarjeta"
	PaymentMethodTransfer = "Transferencia"
)

// Payment pago inmutable contra una orden o una venta.
type Payment struct {
	ID        string
	OwnerType string
	OwnerID   string
	Amount    decimal.Decimal
	Method    string
	Reference string
	CreatedBy string
	CreatedAt time.Time
}
