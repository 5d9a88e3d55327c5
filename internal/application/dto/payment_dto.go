package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordPaymentRequest pago contra una orden o una venta.
type RecordPaymentRequest struct {
	OwnerType string          `json:"owner_type" validate:"required,oneof=order sale"`
	OwnerID   string          `json:"owner_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required"`
	Reference string          `json:"reference"`
}

// PaymentResponse pago registrado y saldo resultante del dueño.
type PaymentResponse struct {
	ID            string          `json:"id"`
	OwnerType     string          `json:"owner_type"`
	OwnerID       string          `json:"owner_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Balance       decimal.Decimal `json:"balance"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   string          `json:"order_status,omitempty"`
}
