package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest alta individual de un producto del catálogo.
// InitialStock entra como movimiento Entrada.
type CreateProductRequest struct {
	SKU            string          `json:"sku" validate:"required,notblank,max=100"`
	Name           string          `json:"name" validate:"required,notblank,max=200"`
	Category       string          `json:"category" validate:"required"`
	Price          decimal.Decimal `json:"price"`
	InitialStock   int             `json:"initial_stock" validate:"gte=0"`
	MinStock       int             `json:"min_stock" validate:"gte=0"`
	WarrantyMonths int             `json:"warranty_months" validate:"gte=0,lte=120"`
}

// SetActiveRequest baja o reactivación lógica.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	Reserved       int             `json:"reserved"`
	MinStock       int             `json:"min_stock"`
	WarrantyMonths int             `json:"warranty_months"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
