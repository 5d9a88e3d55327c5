package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest venta directa de mostrador.
type CreateSaleRequest struct {
	ClientID string            `json:"client_id"`
	Items    []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemRequest línea de venta.
type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// SaleResponse venta creada.
type SaleResponse struct {
	ID            string             `json:"id"`
	Folio         string             `json:"folio"`
	ClientID      string             `json:"client_id,omitempty"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	Balance       decimal.Decimal    `json:"balance"`
	PaymentStatus string             `json:"payment_status"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items"`
}

// SaleItemResponse línea con precio congelado.
type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
