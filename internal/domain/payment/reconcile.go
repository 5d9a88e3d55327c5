// Package payment recalcula totales y estado de pago de una orden o venta a partir
// de la suma de sus pagos, que es la única fuente de verdad del monto pagado.
package payment

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// Balance resultado de la conciliación.
type Balance struct {
	Total  decimal.Decimal
	Paid   decimal.Decimal
	Due    decimal.Decimal // negativo = sobrepago
	Status string
}

// ValidateAmount rechaza montos no positivos.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.NewError(domain.ErrInvalidAmount, "el monto debe ser mayor a cero", amount.String())
	}
	return nil
}

// Sum total pagado.
func Sum(payments []entity.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Reconcile calcula saldo y estado. Si el total aún no está definido (cero),
// el primer pago lo establece.
func Reconcile(total decimal.Decimal, payments []entity.Payment) Balance {
	paid := Sum(payments)
	if total.IsZero() && len(payments) > 0 {
		total = payments[0].Amount
	}
	due := total.Sub(paid)
	return Balance{
		Total:  total,
		Paid:   paid,
		Due:    due,
		Status: Status(total, paid),
	}
}

// Status Pagado si saldo <= 0, Parcial si 0 < pagado < total, Pendiente si nada pagado.
func Status(total, paid decimal.Decimal) string {
	switch {
	case paid.IsZero():
		return entity.PaymentStatusPending
	case total.Sub(paid).LessThanOrEqual(decimal.Zero):
		return entity.PaymentStatusPaid
	default:
		return entity.PaymentStatusPartial
	}
}
