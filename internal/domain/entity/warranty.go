package entity

import "time"

// Estados de garantía derivada.
const (
	WarrantyActive  = "Activo"
	WarrantyExpired = "Vencida"
)

// Warranty proyección de lectura; no se persiste.
type Warranty struct {
	TicketID    string
	TicketCode  string
	UserID      string
	ProductID   string
	SKU         string
	ProductName string
	Quantity    int
	Months      int
	StartsAt    time.Time
	EndsAt      time.Time
	Status      string
}
