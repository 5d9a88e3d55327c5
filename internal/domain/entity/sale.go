package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale venta de mostrador con descuento directo de stock.
type Sale struct {
	ID            string
	Folio         string // RS-VT-<n>
	ClientID      string
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	Balance       decimal.Decimal
	PaymentStatus string
	CreatedBy     string
	CreatedAt     time.Time
	Items         []SaleItem
}

// SaleItem línea de venta con precio congelado al momento del cobro.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
