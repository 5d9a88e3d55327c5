package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de producto del catálogo del taller.
const (
	CategoryRefaccion = "Refacción"
	CategoryAccesorio = "Accesorio"
	CategoryEquipo    = "Equipo"
	CategorySoftware  = "Software"
	CategoryServicio  = "Servicio"
)

// Estados de stock derivados de disponible vs. mínimo.
const (
	StockStatusOut       = "Agotado"
	StockStatusLow       = "Bajo"
	StockStatusAvailable = "Disponible"
)

// Product representa un artículo del catálogo con su stock total, reservado y mínimo.
// Stock y Reserved solo cambian a través del Stock Ledger; Reserved <= Stock siempre.
type Product struct {
	ID             string
	SKU            string // clave de negocio única e inmutable
	Name           string
	Category       string
	Price          decimal.Decimal
	Stock          int // stockActual: total en existencia
	Reserved       int // stockReservado: apartado por tickets pendientes
	MinStock       int // punto de reorden
	WarrantyMonths int
	Active         bool // baja lógica: false no se elimina físicamente
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Available unidades libres para reservar o vender.
func (p *Product) Available() int {
	return p.Stock - p.Reserved
}
